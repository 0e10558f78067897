package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	appcontext "github.com/SeakMengs/DossierFlow/internal/app_context"
	"github.com/SeakMengs/DossierFlow/internal/auth"
	"github.com/SeakMengs/DossierFlow/internal/exporter"
	"github.com/SeakMengs/DossierFlow/internal/repository"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/gin-gonic/gin"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index       *IndexController
	Auth        *AuthController
	Dossier     *DossierController
	Commentaire *CommentaireController
	Backoffice  *BackofficeController
	Procedure   *ProcedureController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)
	exp := exporter.New(app.Repository, app.S3, app.Config.Minio.BUCKET, app.Config.Export, app.Logger)

	return &Controller{
		Index:       &IndexController{baseController: bc},
		Auth:        &AuthController{baseController: bc},
		Dossier:     &DossierController{baseController: bc},
		Commentaire: &CommentaireController{baseController: bc},
		Backoffice:  &BackofficeController{baseController: bc, exporter: exp},
		Procedure:   &ProcedureController{baseController: bc},
	}
}

func (b *baseController) getAuthUser(ctx *gin.Context) (*auth.JWTPayload, error) {
	user, ok := auth.GetAuthUser(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	return &user, nil
}

func (b *baseController) getActor(ctx *gin.Context) (dossier.Actor, bool) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		b.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return dossier.Actor{}, false
	}
	return user.ToActor(), true
}

// newRequest builds the repository request for the dossier in the path.
// An If-Match header carrying a version turns on the optimistic check.
func (b *baseController) newRequest(ctx *gin.Context, route dossier.Route, action dossier.Action) (repository.Request, bool) {
	actor, ok := b.getActor(ctx)
	if !ok {
		return repository.Request{}, false
	}

	req := repository.Request{
		DossierID: ctx.Param("dossierId"),
		Actor:     actor,
		Route:     route,
		Action:    action,
	}

	if v := ctx.GetHeader("If-Match"); v != "" {
		version, err := strconv.Atoi(v)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(fmt.Errorf("If-Match must be a dossier version: %w", err), "If-Match"), nil)
			return repository.Request{}, false
		}
		req.ExpectedVersion = &version
	}

	return req, true
}

// statusOf maps domain errors to http status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, dossier.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dossier.ErrStateNotAllowed), errors.Is(err, dossier.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, dossier.ErrStaleObject), errors.Is(err, dossier.ErrProcedureLocked), errors.Is(err, repository.ErrProcedurePathTaken):
		return http.StatusConflict
	case errors.Is(err, dossier.ErrInvalidAction), errors.Is(err, dossier.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, dossier.ErrInvalidDecision), errors.Is(err, dossier.ErrProcedureNotAccepting),
		errors.Is(err, dossier.ErrEntrepriseNotFound), errors.Is(err, exporter.ErrTooManyRows):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dossier.ErrExternalLookup):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// failed answers with the status of err. Gate refusals on a dossier carry
// the user facing refusal message.
func (b *baseController) failed(ctx *gin.Context, err error, field string) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		b.app.Logger.Error(err)
	} else {
		b.app.Logger.Debugf("Request refused with %d: %v", code, err)
	}

	message := ""
	if field == "dossier" {
		message = dossier.RefusalMessage(err)
	}
	util.ResponseFailed(ctx, code, message, util.GenerateErrorMessages(err, field), nil)
}

// changed emits a state change event when the save moved the dossier.
func (b *baseController) changed(ctx *gin.Context, result *repository.Result) {
	if result != nil && result.Changed() {
		b.app.Notifier.StateChanged(ctx, result.Dossier.ID, result.From, result.To)
	}
}

func dossierResponse(result *repository.Result) gin.H {
	return gin.H{
		"dossier": result.Dossier,
		"from":    result.From,
		"state":   result.To,
		"changed": result.Changed(),
	}
}
