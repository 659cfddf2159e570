package handlers

import (
	"github.com/jmoiron/sqlx"

	"github.com/iTeLLiiX/CraftConnect/internal/config"
	"github.com/iTeLLiiX/CraftConnect/internal/realtime"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
)

type Deps struct {
	AuthHandler        *AuthHandler
	ProfileHandler     *ProfileHandler
	JobHandler         *JobHandler
	ApplicationHandler *ApplicationHandler
	CraftsmanHandler   *CraftsmanHandler
	MessageHandler     *MessageHandler
	StreamHandler      *StreamHandler
	AdminHandler       *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, bus realtime.Bus) *Deps {
	userRepo := repos.NewUserRepo(db)
	jobRepo := repos.NewJobRepo(db)
	appRepo := repos.NewApplicationRepo(db)
	msgRepo := repos.NewMessageRepo(db)

	timeout := cfg.DB.QueryTimeout
	party := &services.PartyChecker{Jobs: jobRepo, Apps: appRepo}

	profileSvc := &services.ProfileService{Users: userRepo, Timeout: timeout}
	jobSvc := &services.JobService{Jobs: jobRepo, Apps: appRepo, Users: userRepo, Timeout: timeout}
	appSvc := &services.ApplicationService{Jobs: jobRepo, Apps: appRepo, Timeout: timeout}
	craftSvc := &services.CraftsmanService{Users: userRepo, Timeout: timeout}
	msgSvc := &services.MessageService{Messages: msgRepo, Users: userRepo, Party: party, Bus: bus, Timeout: timeout}
	convSvc := &services.ConversationService{Jobs: jobRepo, Apps: appRepo, Users: userRepo, Messages: msgRepo, Timeout: timeout}

	return &Deps{
		AuthHandler:        &AuthHandler{Auth: auth},
		ProfileHandler:     &ProfileHandler{Profile: profileSvc},
		JobHandler:         &JobHandler{Jobs: jobSvc},
		ApplicationHandler: &ApplicationHandler{Apps: appSvc},
		CraftsmanHandler:   &CraftsmanHandler{Craftsmen: craftSvc},
		MessageHandler:     &MessageHandler{Messages: msgSvc, ConversationSvc: convSvc},
		StreamHandler:      &StreamHandler{Messages: msgSvc, Bus: bus},
		AdminHandler:       &AdminHandler{Jobs: jobSvc},
	}
}
