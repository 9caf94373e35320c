package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/boxlabs/storagebox/internal/auth/service"
	"github.com/boxlabs/storagebox/internal/auth/store"
	"github.com/boxlabs/storagebox/pkg/httpx"
	"github.com/boxlabs/storagebox/pkg/slogx"

	_ "github.com/boxlabs/storagebox/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	TokenService      *service.TokenService
	UserService       *service.UserService
	RoleService       *service.RoleService
	PermissionService *service.PermissionService
	CategoryService   *service.CategoryService
	FeeService        *service.FeeService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerRoles()
	r.registerCategories()
	r.registerFees()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
//
//	@title			Storage Box Service API
//	@version		0.1.0
//	@description	Authentication and bookkeeping service for storage box rentals. Issues
//	@description	HMAC-signed JWT access and refresh tokens and manages users, roles,
//	@description	categories and fees.
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
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict limit by IP to slow brute force
	loginHandler := &LoginHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - strict limit, same abuse profile as login
	refreshHandler := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /introspect - resource servers poll this, moderate limit
	introspectHandler := &IntrospectHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/introspect",
		httpx.Chain(introspectHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - authenticated caller revokes its own token
	logoutHandler := &LogoutHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	authed := func(next http.Handler, scopes ...string) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RequireAnyScope(scopes...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	// POST /users is open registration; every new account gets the default
	// USER role, so it is rate limited like login rather than authenticated.
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /v1/users", authed(http.HandlerFunc(h.HandleList), service.AdminRoleName))
	r.Mux.Handle("GET /v1/users/{id}", authed(http.HandlerFunc(h.HandleGet), service.PermissionGet))
	r.Mux.Handle("PUT /v1/users/{id}", authed(http.HandlerFunc(h.HandleUpdate), service.PermissionUpdate))
	r.Mux.Handle("DELETE /v1/users/{id}", authed(http.HandlerFunc(h.HandleDelete), service.PermissionDelete))
	r.Mux.Handle("GET /v1/users/me", authed(http.HandlerFunc(h.HandleMe), service.PermissionGet))
}

func (r *Router) registerRoles() {
	rh := &RolesHandler{RoleService: r.RoleService}
	ph := &PermissionsHandler{PermissionService: r.PermissionService}

	admin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RequireAnyScope(service.AdminRoleName),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/roles", admin(http.HandlerFunc(rh.HandleCreate)))
	r.Mux.Handle("GET /v1/roles", admin(http.HandlerFunc(rh.HandleList)))
	r.Mux.Handle("GET /v1/roles/{name}", admin(http.HandlerFunc(rh.HandleGet)))
	r.Mux.Handle("DELETE /v1/roles/{name}", admin(http.HandlerFunc(rh.HandleDelete)))

	r.Mux.Handle("POST /v1/permissions", admin(http.HandlerFunc(ph.HandleCreate)))
	r.Mux.Handle("GET /v1/permissions", admin(http.HandlerFunc(ph.HandleList)))
	r.Mux.Handle("DELETE /v1/permissions/{name}", admin(http.HandlerFunc(ph.HandleDelete)))
}

func (r *Router) registerCategories() {
	h := &CategoriesHandler{CategoryService: r.CategoryService}

	secured := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/categories", secured(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/categories", secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/categories/{id}", secured(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("DELETE /v1/categories/{id}", secured(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerFees() {
	h := &FeesHandler{FeeService: r.FeeService}

	secured := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/fees", secured(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/fees", secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/fees/{id}", secured(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /v1/fees/{id}", secured(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/fees/{id}", secured(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.TokenService.Revocations),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
