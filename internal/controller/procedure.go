package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/repository"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/gin-gonic/gin"
)

// ProcedureController serves administrateurs building procedures.
type ProcedureController struct {
	*baseController
}

func (pc ProcedureController) CreateProcedure(ctx *gin.Context) {
	type TypeDeChamp struct {
		Libelle     string `json:"libelle" binding:"required,strNotEmpty,cmax=255"`
		TypeChamp   string `json:"typeChamp" binding:"omitempty,cmax=50"`
		Description string `json:"description"`
		Mandatory   bool   `json:"mandatory"`
	}
	type TypeDePieceJustificative struct {
		Libelle     string `json:"libelle" binding:"required,strNotEmpty,cmax=255"`
		Description string `json:"description"`
		Mandatory   bool   `json:"mandatory"`
	}
	type Request struct {
		Libelle                   string                     `json:"libelle" binding:"required,strNotEmpty,cmax=255"`
		Description               string                     `json:"description" binding:"required,strNotEmpty"`
		Organisation              string                     `json:"organisation" binding:"omitempty,cmax=255"`
		ForIndividual             bool                       `json:"forIndividual"`
		CerfaFlag                 bool                       `json:"cerfaFlag"`
		TypesDeChamp              []TypeDeChamp              `json:"typesDeChamp" binding:"dive"`
		TypesDePieceJustificative []TypeDePieceJustificative `json:"typesDePieceJustificative" binding:"dive"`
	}
	var body Request

	actor, ok := pc.getActor(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	procedure := &model.Procedure{
		Libelle:          body.Libelle,
		Description:      body.Description,
		Organisation:     body.Organisation,
		ForIndividual:    body.ForIndividual,
		CerfaFlag:        body.CerfaFlag,
		AdministrateurID: actor.ID,
	}
	for _, t := range body.TypesDeChamp {
		typeChamp := t.TypeChamp
		if typeChamp == "" {
			typeChamp = model.TypeChampText
		}
		procedure.TypesDeChamp = append(procedure.TypesDeChamp, model.TypeDeChamp{
			Libelle:     t.Libelle,
			TypeChamp:   typeChamp,
			Description: t.Description,
			Mandatory:   t.Mandatory,
		})
	}
	for _, t := range body.TypesDePieceJustificative {
		procedure.TypesDePieceJustificative = append(procedure.TypesDePieceJustificative, model.TypeDePieceJustificative{
			Libelle:     t.Libelle,
			Description: t.Description,
			Mandatory:   t.Mandatory,
		})
	}

	created, err := pc.app.Repository.Procedure.Create(ctx, nil, procedure)
	if err != nil {
		pc.failed(ctx, err, "procedure")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"procedure": created,
	})
}

func (pc ProcedureController) ListProcedures(ctx *gin.Context) {
	actor, ok := pc.getActor(ctx)
	if !ok {
		return
	}

	procedures, err := pc.app.Repository.Procedure.ListForAdministrateur(ctx, nil, actor.ID)
	if err != nil {
		pc.failed(ctx, err, "procedure")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"procedures": procedures,
	})
}

func (pc ProcedureController) GetProcedure(ctx *gin.Context) {
	actor, ok := pc.getActor(ctx)
	if !ok {
		return
	}

	p, err := pc.app.Repository.Procedure.GetOwned(ctx, nil, ctx.Param("procedureId"), actor.ID)
	if err != nil {
		pc.failed(ctx, err, "procedure")
		return
	}

	total, err := pc.app.Repository.Procedure.TotalDossier(ctx, nil, p.ID)
	if err != nil {
		pc.failed(ctx, err, "procedure")
		return
	}

	gestionnaires, err := pc.app.Repository.Gestionnaire.ListByProcedure(ctx, nil, p.ID)
	if err != nil {
		pc.failed(ctx, err, "procedure")
		return
	}

	view := p.ToProcedure()
	util.ResponseSuccess(ctx, gin.H{
		"procedure":     p,
		"locked":        view.Locked(),
		"accepting":     view.Accepting(),
		"totalDossier":  total,
		"gestionnaires": gestionnaires,
	})
}

func (pc ProcedureController) Publish(ctx *gin.Context) {
	type Request struct {
		// Path defaults to one derived from the libelle.
		Path string `json:"path" form:"path" binding:"omitempty,cmax=255"`
	}
	var body Request

	actor, ok := pc.getActor(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	p, err := pc.app.Repository.Procedure.Publish(ctx, nil, ctx.Param("procedureId"), actor.ID, body.Path)
	if err != nil {
		pc.failed(ctx, err, "path")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"procedure": p,
	})
}

func (pc ProcedureController) Archive(ctx *gin.Context) {
	actor, ok := pc.getActor(ctx)
	if !ok {
		return
	}

	if err := pc.app.Repository.Procedure.Archive(ctx, nil, ctx.Param("procedureId"), actor.ID); err != nil {
		pc.failed(ctx, err, "procedure")
		return
	}

	util.ResponseSuccess(ctx, nil)
}

func (pc ProcedureController) Clone(ctx *gin.Context) {
	actor, ok := pc.getActor(ctx)
	if !ok {
		return
	}

	p, err := pc.app.Repository.Procedure.Clone(ctx, nil, ctx.Param("procedureId"), actor.ID)
	if err != nil {
		pc.failed(ctx, err, "procedure")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"procedure": p,
	})
}

type moveDownFunc func(ctx *gin.Context, procedureID, administrateurID string, index int) (bool, error)

func (pc ProcedureController) moveDown(ctx *gin.Context, move moveDownFunc) {
	actor, ok := pc.getActor(ctx)
	if !ok {
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(fmt.Errorf("index must be a number: %w", err), "index"), nil)
		return
	}

	moved, err := move(ctx, ctx.Param("procedureId"), actor.ID, index)
	if err != nil {
		pc.failed(ctx, err, "procedure")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"moved": moved,
	})
}

func (pc ProcedureController) MoveTypeDeChampDown(ctx *gin.Context) {
	pc.moveDown(ctx, func(ctx *gin.Context, procedureID, administrateurID string, index int) (bool, error) {
		return pc.app.Repository.Procedure.MoveTypeDeChampDown(ctx, nil, procedureID, administrateurID, index)
	})
}

func (pc ProcedureController) MoveTypeDePieceJustificativeDown(ctx *gin.Context) {
	pc.moveDown(ctx, func(ctx *gin.Context, procedureID, administrateurID string, index int) (bool, error) {
		return pc.app.Repository.Procedure.MoveTypeDePieceJustificativeDown(ctx, nil, procedureID, administrateurID, index)
	})
}

func (pc ProcedureController) ChangeAssignment(ctx *gin.Context) {
	type Request struct {
		To string `form:"to" binding:"required,oneof=assign unassign"`
	}
	var query Request

	actor, ok := pc.getActor(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindQuery(&query); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	err := pc.app.Repository.Procedure.ChangeAssignment(ctx, nil, ctx.Param("procedureId"), actor.ID, ctx.Param("gestionnaireId"), repository.AssignmentChange(query.To))
	if err != nil {
		pc.failed(ctx, err, "gestionnaire")
		return
	}

	util.ResponseSuccess(ctx, nil)
}
