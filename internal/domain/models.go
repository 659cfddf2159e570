package domain

// Job lifecycle.
const (
	JobOpen       = "open"
	JobInProgress = "in_progress"
	JobCompleted  = "completed"
	JobCancelled  = "cancelled"
)

// Urgency levels.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

type Job struct {
	ID          string  `db:"id" json:"id"`
	CustomerID  string  `db:"customer_id" json:"customerId"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	Category    string  `db:"category" json:"category"`
	Street      string  `db:"street" json:"street"`
	PostalCode  string  `db:"postal_code" json:"postalCode"`
	City        string  `db:"city" json:"city"`
	BudgetMin   float64 `db:"budget_min" json:"budgetMin"`
	BudgetMax   float64 `db:"budget_max" json:"budgetMax"`
	Urgency     string  `db:"urgency" json:"urgency"`
	Status      string  `db:"status" json:"status"`
	CreatedAt   string  `db:"created_at" json:"createdAt"`
	UpdatedAt   string  `db:"updated_at" json:"-"`

	CustomerName string `db:"customer_name" json:"customerName,omitempty"`
}

// Application lifecycle.
const (
	ApplicationPending   = "pending"
	ApplicationAccepted  = "accepted"
	ApplicationRejected  = "rejected"
	ApplicationWithdrawn = "withdrawn"
	ApplicationCompleted = "completed"
)

type JobApplication struct {
	ID                string   `db:"id" json:"id"`
	JobID             string   `db:"job_id" json:"jobId"`
	CraftsmanID       string   `db:"craftsman_id" json:"craftsmanId"`
	Message           string   `db:"message" json:"message"`
	Price             *float64 `db:"price" json:"price,omitempty"`
	EstimatedDuration *int64   `db:"estimated_duration" json:"estimatedDuration,omitempty"`
	Status            string   `db:"status" json:"status"`
	ScheduledDate     *string  `db:"scheduled_date" json:"scheduledDate,omitempty"`
	ScheduledTime     *string  `db:"scheduled_time" json:"scheduledTime,omitempty"`
	CreatedAt         string   `db:"created_at" json:"createdAt"`
	UpdatedAt         string   `db:"updated_at" json:"-"`

	CraftsmanName string `db:"craftsman_name" json:"craftsmanName,omitempty"`
}

type Message struct {
	ID         string  `db:"id" json:"id"`
	JobID      string  `db:"job_id" json:"jobId"`
	SenderID   string  `db:"sender_id" json:"senderId"`
	ReceiverID string  `db:"receiver_id" json:"receiverId"`
	Content    string  `db:"content" json:"content"`
	CreatedAt  string  `db:"created_at" json:"createdAt"`
	ReadAt     *string `db:"read_at" json:"readAt,omitempty"`

	SenderName   string `db:"sender_name" json:"senderName,omitempty"`
	ReceiverName string `db:"receiver_name" json:"receiverName,omitempty"`
}

// Read reports whether the receiver has opened the message.
func (m *Message) Read() bool { return m.ReadAt != nil }

// Conversation is derived per (job, counterpart) pair, never persisted.
type Conversation struct {
	Job         Job      `json:"job"`
	Counterpart User     `json:"counterpart"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
}
