package signature

import (
	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/system/database/provider"
	"github.com/openmes/batch-record-api/internal/system/stores"
)

// NewStore creates a new signature store backed by the given database client.
func NewStore(dbClient provider.DBClientInterface) SignatureStore {
	return newSignatureStore(dbClient)
}

// Initialize sets up the signature module and registers its routes.
func Initialize(rg *gin.RouterGroup, registry *stores.StoreRegistry) SignatureService {
	service := newSignatureService(registry)
	handler := newSignatureHandler(service)

	rg.POST("/signatures", handler.createSignature)
	rg.GET("/signatures/:signatureId", handler.getSignature)

	return service
}
