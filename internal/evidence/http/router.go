package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/probatio/probatio/internal/evidence/service"
	"github.com/probatio/probatio/internal/evidence/store"
	"github.com/probatio/probatio/pkg/httpx"
	"github.com/probatio/probatio/pkg/slogx"

	_ "github.com/probatio/probatio/api/evidence" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	staffSecret     []byte
	staffIssuer     string
	staffAPIKeyHash string
	buildVersion    string
	startTime       time.Time
	logger          *slog.Logger

	store             store.Store
	TokenService      *service.TokenService
	DocumentService   *service.DocumentService
	AgreementService  *service.AgreementService
	RebuttalService   *service.RebuttalService
	EscalationService *service.EscalationService
}

func NewRouter(
	staffSecret []byte,
	staffIssuer, staffAPIKeyHash, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:             http.NewServeMux(),
		staffSecret:     staffSecret,
		staffIssuer:     staffIssuer,
		staffAPIKeyHash: staffAPIKeyHash,
		buildVersion:    buildVersion,
		startTime:       time.Now(),
		store:           st,
		logger:          logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerDocuments()
	r.registerSign()
	r.registerRebuttal()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Probatio Evidence Service API
//	@version		0.1.0
//	@description	Evidentiary workflow service: bearer-token document access, OTP
//	@description	signing, identity-validated rebuttals, dual timestamp anchoring
//	@description	and an append-only audit trail.
//
//	@contact.name				Probatio Team
//	@contact.url				https://github.com/probatio/probatio
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Staff JWT. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerDocuments() {
	h := &DocumentsHandler{DocumentService: r.DocumentService}

	staff := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.StaffAuthMiddleware(r.staffSecret, r.staffIssuer, r.staffAPIKeyHash),
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/documents", staff(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/documents/{id}", staff(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("GET /v1/documents/{id}/audit", staff(http.HandlerFunc(h.HandleAudit)))
	r.Mux.Handle("POST /v1/documents/{id}/revoke", staff(http.HandlerFunc(h.HandleRevoke)))
}

func (r *Router) registerSign() {
	h := &SignHandler{
		TokenService:     r.TokenService,
		AgreementService: r.AgreementService,
	}

	// GET resolve - moderate limit keyed by token so a shared office IP does
	// not starve legitimate signers.
	r.Mux.Handle("GET /v1/sign/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleResolve),
			httpx.RateLimitByToken(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/sign/{token}/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.RateLimitByToken(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/sign/{token}/otp",
		httpx.Chain(http.HandlerFunc(h.HandleRequestOTP),
			httpx.RateLimitByToken(httpx.StrictLimit),
		),
	)

	// Verification is the brute-forceable step: strict limit per token.
	r.Mux.Handle("POST /v1/sign/{token}/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyOTP),
			httpx.RateLimitByToken(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/sign/{token}/finalize",
		httpx.Chain(http.HandlerFunc(h.HandleFinalize),
			httpx.RateLimitByToken(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerRebuttal() {
	h := &RebuttalHandler{
		TokenService:    r.TokenService,
		RebuttalService: r.RebuttalService,
	}

	r.Mux.Handle("GET /v1/rebuttal/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleResolve),
			httpx.RateLimitByToken(httpx.ModerateLimit),
		),
	)

	// Identity validation takes a tax id guess: strict limit per token.
	r.Mux.Handle("POST /v1/rebuttal/{token}/identity",
		httpx.Chain(http.HandlerFunc(h.HandleIdentity),
			httpx.RateLimitByToken(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("PUT /v1/rebuttal/{token}/draft",
		httpx.Chain(http.HandlerFunc(h.HandleDraft),
			httpx.RateLimitByToken(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/rebuttal/{token}/decision",
		httpx.Chain(http.HandlerFunc(h.HandleDecision),
			httpx.RateLimitByToken(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/rebuttal/{token}/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.RateLimitByToken(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
