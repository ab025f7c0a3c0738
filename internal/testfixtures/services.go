package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/workshop-planner/internal/application"
	"github.com/example/workshop-planner/internal/catalog"
	"github.com/example/workshop-planner/internal/scheduler"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory whose clock ticks one second
// per read, so fresh workshop ids never collide.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewTickingClock(time.Time{}, time.Second),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WorkshopServiceDeps captures dependencies for constructing a workshop service.
// A nil Builder draws from Catalog (or the default catalog) with Random.
type WorkshopServiceDeps struct {
	Builder  application.ScheduleBuilder
	Catalog  *catalog.Catalog
	Random   scheduler.RandomSource
	Sessions application.SessionRepository
	Logger   *slog.Logger
}

// NewWorkshopService builds a workshop service from deps and the factory defaults.
func (f *ServiceFactory) NewWorkshopService(deps WorkshopServiceDeps) *application.WorkshopService {
	builder := deps.Builder
	if builder == nil {
		cat := deps.Catalog
		if cat == nil {
			var err error
			cat, err = catalog.Default()
			if err != nil {
				panic(err)
			}
		}
		builder = scheduler.NewBuilder(cat, deps.Random)
	}
	return application.NewWorkshopServiceWithLogger(
		builder,
		deps.Sessions,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
	)
}

// LibraryServiceDeps captures dependencies for constructing a library service.
type LibraryServiceDeps struct {
	Library application.LibraryRepository
	Logger  *slog.Logger
}

// NewLibraryService builds a library service from deps and the factory defaults.
func (f *ServiceFactory) NewLibraryService(deps LibraryServiceDeps) *application.LibraryService {
	return application.NewLibraryServiceWithLogger(
		deps.Library,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
	)
}
