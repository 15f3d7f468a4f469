package main

import (
	"github.com/openmes/batch-record-api/internal/approval"
	"github.com/openmes/batch-record-api/internal/batchrecord"
	"github.com/openmes/batch-record-api/internal/section"
	"github.com/openmes/batch-record-api/internal/signature"
	"github.com/openmes/batch-record-api/internal/system/database/provider"
	"github.com/openmes/batch-record-api/internal/system/log"
	"github.com/openmes/batch-record-api/internal/system/stores"
	"github.com/openmes/batch-record-api/internal/template"
)

// buildStoreRegistry constructs every module store on the shared database
// client and collects them into the registry the services resolve their
// cross-module dependencies from.
func buildStoreRegistry() (*stores.StoreRegistry, error) {
	logger := log.GetLogger()

	dbClient, err := provider.GetDBProvider().GetBatchRecordDBClient()
	if err != nil {
		return nil, err
	}

	templateStore := template.NewStore(dbClient)
	batchRecordStore := batchrecord.NewStore(dbClient)
	sectionStore := section.NewStore(dbClient)
	approvalStore := approval.NewStore(dbClient)
	signatureStore := signature.NewStore(dbClient)

	registry := stores.NewStoreRegistry(
		dbClient,
		templateStore,
		batchRecordStore,
		sectionStore,
		approvalStore,
		signatureStore,
	)
	logger.Info("Store registry initialized")

	return registry, nil
}
