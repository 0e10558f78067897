package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/SeakMengs/DossierFlow/internal/exporter"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/gin-gonic/gin"
)

// BackofficeController serves the gestionnaires instructing dossiers.
type BackofficeController struct {
	*baseController
	exporter *exporter.Exporter
}

// assignedProcedure loads the procedure in the path when the gestionnaire is
// assigned to it. Other procedures read as missing.
func (bc BackofficeController) assignedProcedure(ctx *gin.Context, actor dossier.Actor) (*model.Procedure, bool) {
	p, err := bc.app.Repository.Procedure.GetById(ctx, nil, ctx.Param("procedureId"))
	if err == nil && !p.ToProcedure().AssignedTo(actor.ID) {
		err = fmt.Errorf("procedure %s: %w", p.ID, dossier.ErrNotFound)
	}
	if err != nil {
		bc.failed(ctx, err, "procedure")
		return nil, false
	}
	return p, true
}

func (bc BackofficeController) ListProcedures(ctx *gin.Context) {
	actor, ok := bc.getActor(ctx)
	if !ok {
		return
	}

	procedures, err := bc.app.Repository.Procedure.ListForGestionnaire(ctx, nil, actor.ID)
	if err != nil {
		bc.failed(ctx, err, "procedure")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"procedures": procedures,
	})
}

// ListDossiers pages through a procedure's dossiers with the gestionnaire's
// listing columns.
func (bc BackofficeController) ListDossiers(ctx *gin.Context) {
	actor, ok := bc.getActor(ctx)
	if !ok {
		return
	}
	p, ok := bc.assignedProcedure(ctx, actor)
	if !ok {
		return
	}

	columns, err := bc.app.Repository.Preference.Resolve(ctx, actor.ID, &p.ID)
	if err != nil {
		bc.failed(ctx, err, "preference")
		return
	}

	page, pageSize := util.GetPagination(ctx)
	dossiers, total, err := bc.app.Repository.Dossier.ListForProcedure(ctx, nil, actor.ID, p.ID, columns, page, pageSize)
	if err != nil {
		bc.failed(ctx, err, "dossier")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"columns":   columns,
		"dossiers":  dossiers,
		"total":     total,
		"page":      page,
		"pageSize":  pageSize,
		"totalPage": util.CalculateTotalPage(total, pageSize),
	})
}

func (bc BackofficeController) Search(ctx *gin.Context) {
	actor, ok := bc.getActor(ctx)
	if !ok {
		return
	}

	page, pageSize := util.GetPagination(ctx)
	dossiers, total, err := bc.app.Repository.Dossier.Search(ctx, nil, actor.ID, ctx.Query("q"), page, pageSize)
	if err != nil {
		bc.failed(ctx, err, "dossier")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"dossiers":  dossiers,
		"total":     total,
		"page":      page,
		"pageSize":  pageSize,
		"totalPage": util.CalculateTotalPage(total, pageSize),
	})
}

func (bc BackofficeController) GetDossier(ctx *gin.Context) {
	actor, ok := bc.getActor(ctx)
	if !ok {
		return
	}

	d, err := bc.app.Repository.Dossier.Authorized(ctx, nil, ctx.Param("dossierId"), actor, dossier.RouteBackoffice)
	if err != nil {
		bc.failed(ctx, err, "dossier")
		return
	}

	view := d.ToDossier()
	util.ResponseSuccess(ctx, gin.H{
		"dossier":         d,
		"champs":          d.OrderedChamps(),
		"actions":         dossier.AdvancingActions(d.State, dossier.RoleGestionnaire),
		"followersEmails": view.FollowersEmails(),
		"totalFollow":     view.TotalFollow(),
		"cerfaAvailable":  view.CerfaAvailable(),
	})
}

// Act returns the handler feeding action to the transition table.
func (bc BackofficeController) Act(action dossier.Action) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := bc.newRequest(ctx, dossier.RouteBackoffice, action)
		if !ok {
			return
		}

		result, err := bc.app.Repository.Dossier.ApplyAction(ctx, nil, req)
		if err != nil {
			bc.failed(ctx, err, "dossier")
			return
		}

		bc.changed(ctx, result)
		util.ResponseSuccess(ctx, dossierResponse(result))
	}
}

// Decide returns the handler recording an administrative decision.
func (bc BackofficeController) Decide(decision dossier.Decision) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := bc.newRequest(ctx, dossier.RouteBackoffice, "")
		if !ok {
			return
		}

		result, err := bc.app.Repository.Dossier.Decide(ctx, nil, req, decision)
		if err != nil {
			bc.failed(ctx, err, "dossier")
			return
		}

		bc.changed(ctx, result)
		util.ResponseSuccess(ctx, dossierResponse(result))
	}
}

func (bc BackofficeController) Archive(ctx *gin.Context) {
	req, ok := bc.newRequest(ctx, dossier.RouteBackoffice, "")
	if !ok {
		return
	}

	result, err := bc.app.Repository.Dossier.Archive(ctx, nil, req)
	if err != nil {
		bc.failed(ctx, err, "dossier")
		return
	}

	util.ResponseSuccess(ctx, dossierResponse(result))
}

func (bc BackofficeController) ToggleFollow(ctx *gin.Context) {
	req, ok := bc.newRequest(ctx, dossier.RouteBackoffice, "")
	if !ok {
		return
	}

	following, result, err := bc.app.Repository.Dossier.ToggleFollow(ctx, nil, req)
	if err != nil {
		bc.failed(ctx, err, "dossier")
		return
	}

	bc.changed(ctx, result)
	out := dossierResponse(result)
	out["following"] = following
	util.ResponseSuccess(ctx, out)
}

func (bc BackofficeController) Columns(ctx *gin.Context) {
	actor, ok := bc.getActor(ctx)
	if !ok {
		return
	}
	p, ok := bc.assignedProcedure(ctx, actor)
	if !ok {
		return
	}

	columns, err := bc.app.Repository.Preference.Columns(ctx, &p.ID)
	if err != nil {
		bc.failed(ctx, err, "procedure")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"columns": columns,
	})
}

func (bc BackofficeController) GetPreferences(ctx *gin.Context) {
	actor, ok := bc.getActor(ctx)
	if !ok {
		return
	}
	p, ok := bc.assignedProcedure(ctx, actor)
	if !ok {
		return
	}

	columns, err := bc.app.Repository.Preference.Resolve(ctx, actor.ID, &p.ID)
	if err != nil {
		bc.failed(ctx, err, "preference")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"preferences": columns,
	})
}

func (bc BackofficeController) ReplacePreferences(ctx *gin.Context) {
	type Preference struct {
		Group  string            `json:"group" binding:"required,oneof=dossier user champs"`
		Key    string            `json:"key" binding:"required,strNotEmpty"`
		Order  dossier.SortOrder `json:"order" binding:"omitempty,oneof=asc desc"`
		Filter string            `json:"filter"`
	}
	type Request struct {
		Preferences []Preference `json:"preferences" binding:"required,dive"`
	}
	var body Request

	actor, ok := bc.getActor(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	p, ok := bc.assignedProcedure(ctx, actor)
	if !ok {
		return
	}

	prefs := make([]dossier.Preference, len(body.Preferences))
	for i, pref := range body.Preferences {
		prefs[i] = dossier.Preference{Group: pref.Group, Key: pref.Key, Order: pref.Order, Filter: pref.Filter}
	}

	if err := bc.app.Repository.Preference.Replace(ctx, nil, actor.ID, &p.ID, prefs); err != nil {
		bc.failed(ctx, err, "preferences")
		return
	}

	columns, err := bc.app.Repository.Preference.Resolve(ctx, actor.ID, &p.ID)
	if err != nil {
		bc.failed(ctx, err, "preference")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"preferences": columns,
	})
}

// Download streams every sent dossier of the procedure as csv or xlsx.
func (bc BackofficeController) Download(ctx *gin.Context) {
	actor, ok := bc.getActor(ctx)
	if !ok {
		return
	}

	format, err := dossier.ParseFormat(ctx.Query("format"))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err, "format"), nil)
		return
	}

	p, ok := bc.assignedProcedure(ctx, actor)
	if !ok {
		return
	}

	export, err := bc.exporter.Export(ctx, p, format)
	if err != nil {
		bc.failed(ctx, err, "export")
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName))
	ctx.DataFromReader(http.StatusOK, int64(len(export.Body)), export.ContentType, bytes.NewReader(export.Body), nil)
}
