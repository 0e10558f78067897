package controller

import (
	"net/http"

	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/gin-gonic/gin"
)

// CommentaireController serves the messaging between owners and
// gestionnaires. Both roles reach the same handlers.
type CommentaireController struct {
	*baseController
}

func (cc CommentaireController) ListCommentaires(ctx *gin.Context) {
	actor, ok := cc.getActor(ctx)
	if !ok {
		return
	}

	d, err := cc.app.Repository.Dossier.Authorized(ctx, nil, ctx.Param("dossierId"), actor, dossier.RouteCommentaire)
	if err != nil {
		cc.failed(ctx, err, "dossier")
		return
	}

	var champID *string
	if v := ctx.Query("champId"); v != "" {
		champID = &v
	}

	commentaires, err := cc.app.Repository.Commentaire.ListForDossier(ctx, nil, d.ID, champID)
	if err != nil {
		cc.failed(ctx, err, "commentaire")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"commentaires": commentaires,
	})
}

// AddCommentaire posts a message, optionally scoped to a champ and with one
// attached file.
func (cc CommentaireController) AddCommentaire(ctx *gin.Context) {
	type Request struct {
		Body    string  `json:"body" form:"body" binding:"required,strNotEmpty"`
		ChampID *string `json:"champId" form:"champId"`
	}
	var body Request

	req, ok := cc.newRequest(ctx, dossier.RouteCommentaire, dossier.ActionComment)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	commentaire := &model.Commentaire{Body: body.Body, ChampID: body.ChampID}

	var file *model.File
	if fileHeader, err := ctx.FormFile("file"); err == nil {
		if _, err := cc.app.Repository.Dossier.Authorized(ctx, nil, req.DossierID, req.Actor, req.Route); err != nil {
			cc.failed(ctx, err, "dossier")
			return
		}

		file, err = cc.upload(ctx, fileHeader, util.GetPieceJustificativeDirectoryPath(req.DossierID, nil))
		if err != nil {
			cc.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload file", util.GenerateErrorMessages(err, "file"), nil)
			return
		}
		commentaire.PieceJustificative = &model.PieceJustificative{File: *file}
	}

	result, err := cc.app.Repository.Dossier.AddCommentaire(ctx, nil, req, commentaire)
	if err != nil {
		cc.discard(ctx, file)
		cc.failed(ctx, err, "dossier")
		return
	}

	cc.app.Notifier.NewCommentaire(ctx, result.Dossier.ID, req.Actor.Email, commentaire.Body)
	cc.changed(ctx, result)

	out := dossierResponse(result)
	out["commentaire"] = commentaire
	util.ResponseSuccess(ctx, out)
}

// Invite shares the dossier: owners invite users, gestionnaires invite
// gestionnaires.
func (cc CommentaireController) Invite(ctx *gin.Context) {
	type Request struct {
		Email string `json:"email" form:"email" binding:"required,email"`
	}
	var body Request

	req, ok := cc.newRequest(ctx, dossier.RouteInvite, "")
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	result, err := cc.app.Repository.Dossier.Invite(ctx, nil, req, body.Email)
	if err != nil {
		cc.failed(ctx, err, "dossier")
		return
	}

	util.ResponseSuccess(ctx, dossierResponse(result))
}
