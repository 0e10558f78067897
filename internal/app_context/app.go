package appcontext

import (
	"github.com/SeakMengs/DossierFlow/internal/auth"
	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/entreprise"
	"github.com/SeakMengs/DossierFlow/internal/notifier"
	"github.com/SeakMengs/DossierFlow/internal/repository"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// JWTService manages JWT operations for authentication such as generate, verify, refresh token.
	JWTService auth.JWTInterface

	// S3 stores attachments and archived exports. Nil disables uploads.
	S3 *minio.Client

	// Entreprise resolves a siret against the company registry.
	Entreprise entreprise.Lookup

	// Notifier emits dossier events for the notification consumer.
	Notifier notifier.Notifier
}
