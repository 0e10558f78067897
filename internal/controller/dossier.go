package controller

import (
	"net/http"

	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/gin-gonic/gin"
)

// DossierController serves the owner of a dossier.
type DossierController struct {
	*baseController
}

func (dc DossierController) CreateDossier(ctx *gin.Context) {
	actor, ok := dc.getActor(ctx)
	if !ok {
		return
	}

	d, err := dc.app.Repository.Dossier.Create(ctx, nil, ctx.Param("procedureId"), actor.ID)
	if err != nil {
		dc.failed(ctx, err, "procedure")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"dossier": d,
	})
}

func (dc DossierController) ListOwnDossiers(ctx *gin.Context) {
	actor, ok := dc.getActor(ctx)
	if !ok {
		return
	}

	dossiers, err := dc.app.Repository.Dossier.ListForUser(ctx, nil, actor)
	if err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"dossiers": dossiers,
	})
}

// GetRecapitulatif shows a sent dossier with the actions that would move it.
func (dc DossierController) GetRecapitulatif(ctx *gin.Context) {
	actor, ok := dc.getActor(ctx)
	if !ok {
		return
	}

	d, err := dc.app.Repository.Dossier.Authorized(ctx, nil, ctx.Param("dossierId"), actor, dossier.RouteRecapitulatif)
	if err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	view := d.ToDossier()
	util.ResponseSuccess(ctx, gin.H{
		"dossier":        d,
		"champs":         d.OrderedChamps(),
		"actions":        dossier.AdvancingActions(d.State, dossier.RoleUser),
		"cerfaAvailable": view.CerfaAvailable(),
	})
}

func (dc DossierController) workflow(ctx *gin.Context, action dossier.Action) {
	req, ok := dc.newRequest(ctx, dossier.RouteWorkflow, action)
	if !ok {
		return
	}

	result, err := dc.app.Repository.Dossier.ApplyAction(ctx, nil, req)
	if err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	dc.changed(ctx, result)
	util.ResponseSuccess(ctx, dossierResponse(result))
}

// Initiate sends a draft to the administration.
func (dc DossierController) Initiate(ctx *gin.Context) {
	dc.workflow(ctx, dossier.ActionInitiate)
}

// Submit confirms a dossier the administration validated.
func (dc DossierController) Submit(ctx *gin.Context) {
	dc.workflow(ctx, dossier.ActionSubmit)
}

func (dc DossierController) UpdateChamps(ctx *gin.Context) {
	type Request struct {
		// Champs maps a type de champ id to its new value.
		Champs map[string]string `json:"champs" binding:"required"`
	}
	var body Request

	req, ok := dc.newRequest(ctx, dossier.RouteDescription, dossier.ActionUpdate)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	result, err := dc.app.Repository.Dossier.UpdateChamps(ctx, nil, req, body.Champs)
	if err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	dc.changed(ctx, result)
	util.ResponseSuccess(ctx, dossierResponse(result))
}

func (dc DossierController) UpdateIndividual(ctx *gin.Context) {
	type Request struct {
		Gender    string `json:"gender" form:"gender" binding:"omitempty,oneof=M. Mme"`
		Nom       string `json:"nom" form:"nom" binding:"required,strNotEmpty,cmax=255"`
		Prenom    string `json:"prenom" form:"prenom" binding:"required,strNotEmpty,cmax=255"`
		Birthdate string `json:"birthdate" form:"birthdate" binding:"omitempty,datetime=2006-01-02"`
	}
	var body Request

	req, ok := dc.newRequest(ctx, dossier.RouteDescription, dossier.ActionUpdate)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	result, err := dc.app.Repository.Dossier.UpdateIndividual(ctx, nil, req, model.Individual{
		Gender:    body.Gender,
		Nom:       body.Nom,
		Prenom:    body.Prenom,
		Birthdate: body.Birthdate,
	})
	if err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	dc.changed(ctx, result)
	util.ResponseSuccess(ctx, dossierResponse(result))
}

func (dc DossierController) UploadPieceJustificative(ctx *gin.Context) {
	req, ok := dc.newRequest(ctx, dossier.RoutePiecesJustificatives, dossier.ActionUpdate)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "No file uploaded", util.GenerateErrorMessages(err, "file"), nil)
		return
	}

	// refuse before anything reaches the bucket
	if _, err := dc.app.Repository.Dossier.Authorized(ctx, nil, req.DossierID, req.Actor, req.Route); err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	typeID := ctx.Param("typeId")
	file, err := dc.upload(ctx, fileHeader, util.GetPieceJustificativeDirectoryPath(req.DossierID, &typeID))
	if err != nil {
		dc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload file", util.GenerateErrorMessages(err, "file"), nil)
		return
	}

	result, err := dc.app.Repository.Dossier.AttachPieceJustificative(ctx, nil, req, typeID, file)
	if err != nil {
		dc.discard(ctx, file)
		dc.failed(ctx, err, "dossier")
		return
	}

	dc.changed(ctx, result)
	util.ResponseSuccess(ctx, dossierResponse(result))
}

func (dc DossierController) UploadCerfa(ctx *gin.Context) {
	req, ok := dc.newRequest(ctx, dossier.RoutePiecesJustificatives, dossier.ActionUpdate)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "No file uploaded", util.GenerateErrorMessages(err, "file"), nil)
		return
	}

	if _, err := dc.app.Repository.Dossier.Authorized(ctx, nil, req.DossierID, req.Actor, req.Route); err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	file, err := dc.upload(ctx, fileHeader, util.GetCerfaDirectoryPath(req.DossierID))
	if err != nil {
		dc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload file", util.GenerateErrorMessages(err, "file"), nil)
		return
	}

	result, err := dc.app.Repository.Dossier.AttachCerfa(ctx, nil, req, file)
	if err != nil {
		dc.discard(ctx, file)
		dc.failed(ctx, err, "dossier")
		return
	}

	dc.changed(ctx, result)
	util.ResponseSuccess(ctx, dossierResponse(result))
}

// SetEntreprise fills the entreprise and etablissement of a draft from the
// company registry.
func (dc DossierController) SetEntreprise(ctx *gin.Context) {
	type Request struct {
		Siret string `json:"siret" form:"siret" binding:"required,siret"`
	}
	var body Request

	req, ok := dc.newRequest(ctx, dossier.RouteEntreprise, "")
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if _, err := dc.app.Repository.Dossier.Authorized(ctx, nil, req.DossierID, req.Actor, req.Route); err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	found, err := dc.app.Entreprise.Lookup(ctx, body.Siret)
	if err != nil {
		dc.failed(ctx, err, "siret")
		return
	}

	result, err := dc.app.Repository.Dossier.SetEntreprise(ctx, nil, req, found.Entreprise, found.Etablissement)
	if err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	util.ResponseSuccess(ctx, dossierResponse(result))
}

func (dc DossierController) ResetEntreprise(ctx *gin.Context) {
	req, ok := dc.newRequest(ctx, dossier.RouteEntreprise, "")
	if !ok {
		return
	}

	result, err := dc.app.Repository.Dossier.ResetEntreprise(ctx, nil, req)
	if err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	util.ResponseSuccess(ctx, dossierResponse(result))
}

// DestroyDossier deletes a draft of the owner.
func (dc DossierController) DestroyDossier(ctx *gin.Context) {
	actor, ok := dc.getActor(ctx)
	if !ok {
		return
	}

	if err := dc.app.Repository.Dossier.Destroy(ctx, nil, ctx.Param("dossierId"), actor); err != nil {
		dc.failed(ctx, err, "dossier")
		return
	}

	util.ResponseSuccess(ctx, nil)
}
