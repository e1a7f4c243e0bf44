package internal

import (
	"gamatrix/internal/providers"
	"gamatrix/internal/services"
	"gamatrix/internal/storage"
	"gamatrix/internal/structures"
)

// Tooling is what the one-shot maintenance commands work with: the catalog
// service plus direct access to the store file for backups.
type Tooling struct {
	Conf    *structures.Config
	Catalog *services.CatalogService
	Files   *storage.FileManager
	Logger  providers.Logger
}

func NewTooling(conf *structures.Config, catalog *services.CatalogService, files *storage.FileManager, logger providers.Logger) *Tooling {
	return &Tooling{
		Conf:    conf,
		Catalog: catalog,
		Files:   files,
		Logger:  logger,
	}
}
