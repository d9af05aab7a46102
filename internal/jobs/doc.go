// Package jobs holds the search service's background jobs.
//
// CatalogRefresher reloads the restaurant dataset on a fixed interval:
//
//	refresher := jobs.NewCatalogRefresher(catalog, 10*time.Minute, logger)
//	refresher.Start()
//	defer refresher.Stop()
package jobs
