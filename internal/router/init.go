package router

import (
	"github.com/oksasatya/go-ddd-ecommerce/internal/application"
	"github.com/oksasatya/go-ddd-ecommerce/internal/container"
	pginfra "github.com/oksasatya/go-ddd-ecommerce/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-ecommerce/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-ddd-ecommerce/internal/interface/http"
	"github.com/oksasatya/go-ddd-ecommerce/internal/router/modules"
	mailtpl "github.com/oksasatya/go-ddd-ecommerce/pkg/mailer/templates"
)

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

type ProductModuleDeps struct {
	Service *application.ProductService
	Handler *handlers.ProductHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	// Interfaces must stay nil, not typed-nil, when the integration is off.
	var jobs application.JobPublisher
	if q := container.GetEmailQueue(); q != nil && cfg.MailSendEnabled {
		jobs = q
	}

	service := application.NewAuthService(
		pginfra.NewUserRepository(pool),
		pginfra.NewAuditLogRepository(pool),
		container.GetHasher(),
		container.GetJWT(),
		jobs,
		mailtpl.Branding{
			AppName:       cfg.AppName,
			CompanyName:   cfg.CompanyName,
			SupportURL:    cfg.SupportURL,
			StoreFrontURL: cfg.StoreFrontURL,
		},
		container.GetLogger(),
	)

	handler := handlers.NewAuthHandler(
		service,
		container.GetLogger(),
		cfg.CookieDomain,
		cfg.CookieSecure,
	)
	return AuthModuleDeps{Service: service, Handler: handler}
}

func buildProductDeps() ProductModuleDeps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	var index application.ProductIndexer
	if es := container.GetES(); es != nil {
		index = search.NewProductIndex(es, cfg.ESProductsIndex)
	}
	var images application.ImageUploader
	if s := container.GetImageStore(); s != nil {
		images = s
	}

	service := application.NewProductService(
		pginfra.NewProductRepository(pool),
		pginfra.NewCategoryRepository(pool),
		index,
		images,
		container.GetLogger(),
	)
	return ProductModuleDeps{
		Service: service,
		Handler: handlers.NewProductHandler(service, container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	authDeps := buildAuthDeps()
	r.Add(modules.NewAuthModule(authDeps.Handler, container.GetJWT(), container.GetRedis()))

	productDeps := buildProductDeps()
	r.Add(modules.NewProductModule(productDeps.Handler, container.GetJWT(), container.GetRedis()))

	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
}
