package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	account := AccountHandler{Accounts: deps.Accounts, Limiter: deps.AuthLimiter}
	video := VideoHandler{Videos: deps.Videos}
	rating := RatingHandler{Ratings: deps.Ratings}
	comment := CommentHandler{Comments: deps.Comments}
	flag := FlagHandler{Flags: deps.Flags, Limiter: deps.FlagLimiter}
	mod := ModerationHandler{Gate: deps.Gate, Roles: deps.Roles}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/signup", account.Register)
	mux.HandleFunc("POST /api/v1/auth/login", account.Login)
	mux.HandleFunc("GET /api/v1/users/me", account.Profile)
	mux.HandleFunc("PATCH /api/v1/users/me", account.UpdateProfile)

	mux.HandleFunc("POST /api/v1/videos", video.Submit)
	mux.HandleFunc("GET /api/v1/videos", video.List)
	mux.HandleFunc("GET /api/v1/videos/{id}", video.Get)
	mux.HandleFunc("PATCH /api/v1/videos/{id}", video.Update)
	mux.HandleFunc("GET /api/v1/videos/{id}/status", video.Status)
	mux.HandleFunc("POST /api/v1/videos/{id}/views", video.RecordView)

	mux.HandleFunc("POST /api/v1/videos/{id}/ratings", rating.Rate)
	mux.HandleFunc("GET /api/v1/videos/{id}/ratings", rating.Summary)

	mux.HandleFunc("POST /api/v1/videos/{id}/comments", comment.Add)
	mux.HandleFunc("GET /api/v1/videos/{id}/comments", comment.ListForVideo)
	mux.HandleFunc("GET /api/v1/comments/{id}", comment.Get)
	mux.HandleFunc("GET /api/v1/users/{id}/comments", comment.ListByUser)

	mux.HandleFunc("POST /api/v1/flags", flag.Submit)
	mux.HandleFunc("GET /api/v1/flags", flag.List)
	mux.HandleFunc("GET /api/v1/flags/{id}", flag.Get)
	mux.HandleFunc("POST /api/v1/flags/{id}/review", flag.StartReview)
	mux.HandleFunc("POST /api/v1/flags/{id}/action", flag.Action)

	mux.HandleFunc("POST /api/v1/moderation/{type}/{id}/delete", mod.SoftDelete)
	mux.HandleFunc("POST /api/v1/moderation/{type}/{id}/restore", mod.Restore)

	mux.HandleFunc("GET /api/v1/users", mod.SearchUsers)
	mux.HandleFunc("POST /api/v1/users/{id}/roles", mod.AssignRole)
	mux.HandleFunc("DELETE /api/v1/users/{id}/roles/{role}", mod.RevokeRole)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts    AccountService
	Videos      VideoService
	Ratings     RatingService
	Comments    CommentService
	Flags       FlagService
	Gate        VisibilityGate
	Roles       RoleService
	AuthLimiter RateLimiter
	FlagLimiter RateLimiter
}
