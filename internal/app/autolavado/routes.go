package autolavado

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/dipaca/autolavado/internal/access"
	"github.com/dipaca/autolavado/internal/config"
	"github.com/dipaca/autolavado/internal/http/handlers/auth/login"
	"github.com/dipaca/autolavado/internal/http/handlers/auth/register"
	"github.com/dipaca/autolavado/internal/http/handlers/auth/registeradmin"
	"github.com/dipaca/autolavado/internal/http/handlers/auth/verify"
	"github.com/dipaca/autolavado/internal/http/handlers/crud"
	"github.com/dipaca/autolavado/internal/http/handlers/dashboard"
	"github.com/dipaca/autolavado/internal/http/handlers/health"
	"github.com/dipaca/autolavado/internal/http/handlers/items"
	"github.com/dipaca/autolavado/internal/http/handlers/portal"
	"github.com/dipaca/autolavado/internal/http/handlers/servicios"
	"github.com/dipaca/autolavado/internal/http/handlers/todos"
	"github.com/dipaca/autolavado/internal/http/middlewarectx"
	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/models"
	analyticsservice "github.com/dipaca/autolavado/internal/services/analytics"
	authservice "github.com/dipaca/autolavado/internal/services/auth"
	ledgerservice "github.com/dipaca/autolavado/internal/services/ledger"
	portalservice "github.com/dipaca/autolavado/internal/services/portal"
	servicioservice "github.com/dipaca/autolavado/internal/services/servicios"
	"github.com/dipaca/autolavado/internal/storage"

	_ "github.com/dipaca/autolavado/internal/docs"
)

// Deps is everything the route table needs.
type Deps struct {
	Store     *storage.Storage
	Tokens    middlewarectx.TokenParser
	Auth      *authservice.AuthService
	Servicios *servicioservice.ServicioService
	Ledger    *ledgerservice.LedgerService
	Analytics *analyticsservice.AnalyticsService
	Portal    *portalservice.PortalService
	Owners    Owners
	Metrics   *middlewarectx.Metrics
	Gatherer  prometheus.Gatherer
	RateLimit config.RateLimit
	CORS      config.CORS
}

// Owners are the ownership checks used by the owner-or-admin routes.
type Owners struct {
	Cliente  *access.Ownership
	Servicio *access.Ownership
	Item     *access.Ownership
	Todo     *access.Ownership
}

// NewOwners builds the ownership checks backed by st.
func NewOwners(st *storage.Storage) Owners {
	return Owners{
		Cliente:  access.New("cliente", st.ClienteOwner),
		Servicio: access.New("servicio", st.ServicioOwner),
		Item:     access.New("item", st.ItemOwner),
		Todo:     access.New("todo", st.TodoOwner),
	}
}

// RegisterRoutes mounts the API under /api plus /metrics and /docs.
func RegisterRoutes(r chi.Router, log *slog.Logger, d Deps) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		d.Metrics.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   d.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	authn := middlewarectx.Authenticate(d.Tokens, log)
	admin := middlewarectx.RequireAdmin(log)
	limit := middlewarectx.RateLimit(log, d.RateLimit)

	r.Route("/api", func(r chi.Router) {
		hh := health.New(log, d.Store)
		r.Get("/health", hh.Health)
		r.Get("/test-db", hh.TestDB)

		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/login", login.New(log, d.Auth).ServeHTTP)
			r.With(limit).Post("/register-cliente", register.New(log, d.Auth).ServeHTTP)
			r.With(limit).Get("/verify", verify.New(log, d.Auth).ServeHTTP)
			r.With(authn, admin).Post("/register-admin", registeradmin.New(log, d.Auth).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(authn)

			clientes := crud.New(log, clienteResource(d.Store))
			r.Route("/clientes", func(r chi.Router) {
				r.With(middlewarectx.RequireOwnerOrAdmin(log, d.Owners.Cliente, "id")).Get("/{id}", clientes.Get)
				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Get("/stats", clientes.Stats)
					r.Get("/", clientes.List)
					r.Post("/", clientes.Create)
					r.Put("/{id}", clientes.Update)
					r.Delete("/{id}", clientes.Delete)
				})
			})

			trabajadores := crud.New(log, trabajadorResource(d.Store))
			r.Route("/trabajadores", func(r chi.Router) {
				r.Use(admin)
				mountCRUD(r, trabajadores)
			})

			vehiculos := crud.New(log, vehiculoResource(d.Store))
			r.Route("/vehiculos", func(r chi.Router) {
				r.Use(admin)
				mountCRUD(r, vehiculos)
			})

			sh := servicios.New(log, d.Servicios)
			r.Route("/servicios", func(r chi.Router) {
				r.With(middlewarectx.RequireOwnerOrAdmin(log, d.Owners.Servicio, "id")).Get("/{id}", sh.Get)
				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Get("/stats", sh.Stats)
					r.Get("/active", sh.Active)
					r.Get("/completed", sh.Completed)
					r.Get("/", sh.List)
					r.Post("/", sh.Create)
					r.Put("/{id}", sh.Update)
					r.Patch("/{id}/status", sh.UpdateStatus)
					r.Delete("/{id}", sh.Delete)
				})
			})

			ih := items.New(log, d.Ledger)
			r.Route("/servicio-items", func(r chi.Router) {
				r.Use(middlewarectx.RequireAdminOrCliente(log))
				r.Get("/catalogo", ih.Catalogo)
				r.Delete("/items/{item_id}", ih.Remove)
				r.Get("/{servicio_id}/items", ih.List)
				r.Post("/{servicio_id}/items", ih.Add)
				r.Post("/{servicio_id}/discount", ih.Discount)
				r.Post("/{servicio_id}/payment", ih.Payment)
			})

			th := todos.New(log, d.Store)
			r.Route("/todos", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.RequireOwnerOrAdmin(log, d.Owners.Servicio, "servicio_id"))
					r.Get("/servicio/todos/{servicio_id}", th.List)
					r.Post("/servicio/todos/{servicio_id}", th.Create)
				})
				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.RequireOwnerOrAdmin(log, d.Owners.Todo, "id"))
					r.Put("/{id}", th.Update)
					r.Patch("/{id}/toggle", th.Toggle)
					r.Delete("/{id}", th.Delete)
				})
			})

			dh := dashboard.New(log, d.Analytics)
			r.Route("/dashboard", func(r chi.Router) {
				r.Use(admin)
				r.Get("/stats", dh.Stats)
				r.Get("/monthly-income", dh.MonthlyIncome)
				r.Get("/worker-ranking", dh.WorkerRanking)
				r.Get("/income-by-service", dh.IncomeByService)
				r.Get("/income-by-payment", dh.IncomeByPayment)
			})

			ph := portal.New(log, d.Portal)
			r.Route("/client", func(r chi.Router) {
				r.Use(middlewarectx.RequireCliente(log))
				r.Get("/dashboard", ph.Dashboard)
				r.Get("/active-services", ph.ActiveServices)
				r.Get("/info", ph.Info)
				r.Get("/services", ph.Services)
				r.Get("/vehicles", ph.Vehicles)
				r.Put("/profile", ph.UpdateProfile)
			})
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Route not found"))
	})
}

type crudRoutes interface {
	List(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
	Stats(http.ResponseWriter, *http.Request)
}

func mountCRUD(r chi.Router, h crudRoutes) {
	r.Get("/stats", h.Stats)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func clienteResource(st *storage.Storage) crud.Resource[models.Cliente, models.ClienteInput] {
	return crud.Resource[models.Cliente, models.ClienteInput]{
		Name:   "Cliente",
		Key:    "cliente",
		List:   st.ListClientes,
		Get:    st.GetCliente,
		Create: st.CreateCliente,
		Update: st.UpdateCliente,
		Delete: st.DeleteCliente,
		Count:  st.CountClientes,
	}
}

func trabajadorResource(st *storage.Storage) crud.Resource[models.Trabajador, models.TrabajadorInput] {
	return crud.Resource[models.Trabajador, models.TrabajadorInput]{
		Name:   "Trabajador",
		Key:    "trabajador",
		List:   st.ListTrabajadores,
		Get:    st.GetTrabajador,
		Create: st.CreateTrabajador,
		Update: st.UpdateTrabajador,
		Delete: st.DeleteTrabajador,
		Count:  st.CountTrabajadores,
	}
}

func vehiculoResource(st *storage.Storage) crud.Resource[models.Vehiculo, models.VehiculoInput] {
	return crud.Resource[models.Vehiculo, models.VehiculoInput]{
		Name:   "Vehiculo",
		Key:    "vehiculo",
		List:   st.ListVehiculos,
		Get:    st.GetVehiculo,
		Create: st.CreateVehiculo,
		Update: st.UpdateVehiculo,
		Delete: st.DeleteVehiculo,
		Count:  st.CountVehiculos,
	}
}
