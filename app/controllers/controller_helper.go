package controllers

import (
	"sync"

	"github.com/MiguelSanz/Anunzio/app/repository"
	"github.com/MiguelSanz/Anunzio/internal/pkg/cleanup"
	"github.com/MiguelSanz/Anunzio/internal/pkg/lifecycle"
	"github.com/MiguelSanz/Anunzio/internal/pkg/plans"
	"github.com/MiguelSanz/Anunzio/internal/pkg/pricing"
	"github.com/MiguelSanz/Anunzio/internal/pkg/upgrade"
)

// Lazily constructed engine services shared by all handlers. Repositories
// come from the global factory, so these must not be touched before
// repository.InitializeFactory ran.
var (
	servicesOnce sync.Once

	planCatalog     *plans.Catalog
	lifecycleSvc    *lifecycle.Service
	markdownTracker *pricing.Tracker
	orchestrator    *upgrade.Orchestrator
)

func getServices() {
	servicesOnce.Do(func() {
		repos := repository.GetGlobalRepositories()

		planCatalog = plans.NewCatalog(repos.Plan)
		lifecycleSvc = lifecycle.NewService(repos.Listing, planCatalog, cleanup.NewClientFromEnv())
		markdownTracker = pricing.NewTracker(repos.Listing)
		orchestrator = upgrade.NewOrchestrator(
			upgrade.NewRemoteStrategyFromEnv(),
			upgrade.NewFallbackStrategy(repos.Listing, repos.User, planCatalog),
			repos.Listing,
			repos.Credit,
		)
	})
}

func getCatalog() *plans.Catalog {
	getServices()
	return planCatalog
}

func getLifecycleService() *lifecycle.Service {
	getServices()
	return lifecycleSvc
}

func getMarkdownTracker() *pricing.Tracker {
	getServices()
	return markdownTracker
}

func getOrchestrator() *upgrade.Orchestrator {
	getServices()
	return orchestrator
}
