package repository

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
)

func TestDossierCreate(t *testing.T) {
	f := newFixture(t)
	d := f.newDossier(t)

	if d.State != dossier.StateDraft {
		t.Errorf("state = %s, want draft", d.State)
	}
	if d.Version != 1 {
		t.Errorf("version = %d, want 1", d.Version)
	}
	if len(d.Champs) != 2 {
		t.Fatalf("got %d champs, want 2", len(d.Champs))
	}
	for i, c := range d.OrderedChamps() {
		if c.TypeDeChampID != f.procedure.TypesDeChamp[i].ID || c.Value != "" {
			t.Errorf("champ %d = %+v, want empty value for %s", i, c, f.procedure.TypesDeChamp[i].ID)
		}
	}
	if d.Individual != nil {
		t.Error("individual created on a procedure not for individuals")
	}
}

func TestDossierCreateRequiresAcceptingProcedure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.repo.Procedure.Create(ctx, nil, &model.Procedure{
		Libelle:          "Brouillon",
		Description:      "Pas encore publiee",
		AdministrateurID: f.admin.ID,
		ForIndividual:    true,
	})
	if err != nil {
		t.Fatalf("create procedure: %v", err)
	}
	if _, err := f.repo.Dossier.Create(ctx, nil, draft.ID, f.owner.ID); !errors.Is(err, dossier.ErrProcedureNotAccepting) {
		t.Errorf("Create() on unpublished procedure error = %v, want ErrProcedureNotAccepting", err)
	}

	if _, err := f.repo.Procedure.Publish(ctx, nil, draft.ID, f.admin.ID, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}
	d, err := f.repo.Dossier.Create(ctx, nil, draft.ID, f.owner.ID)
	if err != nil {
		t.Fatalf("Create() after publish: %v", err)
	}
	if d.Individual == nil {
		t.Error("individual missing on a procedure for individuals")
	}

	if err := f.repo.Procedure.Archive(ctx, nil, draft.ID, f.admin.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := f.repo.Dossier.Create(ctx, nil, draft.ID, f.owner.ID); !errors.Is(err, dossier.ErrProcedureNotAccepting) {
		t.Errorf("Create() on archived procedure error = %v, want ErrProcedureNotAccepting", err)
	}

	if _, err := f.repo.Dossier.Create(ctx, nil, "missing", f.owner.ID); !errors.Is(err, dossier.ErrNotFound) {
		t.Errorf("Create() on missing procedure error = %v, want ErrNotFound", err)
	}
}

func TestDossierWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.newDossier(t)

	owner := f.ownerActor()
	g := f.gestionnaireActor()

	values := map[string]string{f.procedure.TypesDeChamp[0].ID: "Jardin partage"}
	res, err := f.repo.Dossier.UpdateChamps(ctx, nil, Request{DossierID: d.ID, Actor: owner, Route: dossier.RouteDescription}, values)
	if err != nil {
		t.Fatalf("UpdateChamps() error: %v", err)
	}
	if res.Changed() || res.To != dossier.StateDraft {
		t.Errorf("update on draft moved the dossier to %s", res.To)
	}
	if got := res.Dossier.ToDossier().Champs; got[0].Value != "Jardin partage" && got[1].Value != "Jardin partage" {
		t.Errorf("champ value not saved: %+v", got)
	}

	steps := []struct {
		name  string
		apply func() (*Result, error)
		want  dossier.State
	}{
		{"owner initiates", func() (*Result, error) {
			return f.repo.Dossier.ApplyAction(ctx, nil, Request{DossierID: d.ID, Actor: owner, Route: dossier.RouteWorkflow, Action: dossier.ActionInitiate})
		}, dossier.StateInitiated},
		{"gestionnaire comments", func() (*Result, error) {
			return f.repo.Dossier.AddCommentaire(ctx, nil, Request{DossierID: d.ID, Actor: g, Route: dossier.RouteCommentaire}, &model.Commentaire{Body: "Merci de preciser le montant"})
		}, dossier.StateReplied},
		{"owner comments", func() (*Result, error) {
			return f.repo.Dossier.AddCommentaire(ctx, nil, Request{DossierID: d.ID, Actor: owner, Route: dossier.RouteCommentaire}, &model.Commentaire{Body: "C'est fait"})
		}, dossier.StateUpdated},
		{"gestionnaire validates", func() (*Result, error) {
			return f.repo.Dossier.ApplyAction(ctx, nil, Request{DossierID: d.ID, Actor: g, Route: dossier.RouteBackoffice, Action: dossier.ActionValid})
		}, dossier.StateValidated},
		{"owner submits", func() (*Result, error) {
			return f.repo.Dossier.ApplyAction(ctx, nil, Request{DossierID: d.ID, Actor: owner, Route: dossier.RouteWorkflow, Action: dossier.ActionSubmit})
		}, dossier.StateSubmitted},
		{"gestionnaire receives", func() (*Result, error) {
			return f.repo.Dossier.ApplyAction(ctx, nil, Request{DossierID: d.ID, Actor: g, Route: dossier.RouteBackoffice, Action: dossier.ActionReceive})
		}, dossier.StateReceived},
		{"gestionnaire closes", func() (*Result, error) {
			return f.repo.Dossier.ApplyAction(ctx, nil, Request{DossierID: d.ID, Actor: g, Route: dossier.RouteBackoffice, Action: dossier.ActionClose})
		}, dossier.StateClosed},
		{"comment on closed keeps state", func() (*Result, error) {
			return f.repo.Dossier.AddCommentaire(ctx, nil, Request{DossierID: d.ID, Actor: owner, Route: dossier.RouteCommentaire}, &model.Commentaire{Body: "Merci"})
		}, dossier.StateClosed},
	}

	version := res.Dossier.Version
	for _, step := range steps {
		res, err := step.apply()
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if res.To != step.want || res.Dossier.State != step.want {
			t.Fatalf("%s: state = %s (stored %s), want %s", step.name, res.To, res.Dossier.State, step.want)
		}
		if res.Dossier.Version != version+1 {
			t.Errorf("%s: version = %d, want %d", step.name, res.Dossier.Version, version+1)
		}
		version = res.Dossier.Version
	}

	comments, err := f.repo.Commentaire.ListForDossier(ctx, nil, d.ID, nil)
	if err != nil {
		t.Fatalf("ListForDossier() error: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}
	if comments[0].Email != g.Email || comments[1].Email != owner.Email {
		t.Errorf("comments out of order or wrong author: %s, %s", comments[0].Email, comments[1].Email)
	}
}

func TestDossierGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.newDossier(t)

	stranger, err := f.repo.User.Create(ctx, nil, &model.User{Email: "stranger@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	strangerActor := dossier.Actor{ID: stranger.ID, Email: stranger.Email, Role: dossier.ActorUser}

	if _, err := f.repo.Dossier.Authorized(ctx, nil, d.ID, strangerActor, dossier.RouteDescription); !errors.Is(err, dossier.ErrNotFound) {
		t.Errorf("stranger error = %v, want ErrNotFound", err)
	}
	if _, err := f.repo.Dossier.Authorized(ctx, nil, d.ID, f.ownerActor(), dossier.RouteRecapitulatif); !errors.Is(err, dossier.ErrStateNotAllowed) {
		t.Errorf("recapitulatif on draft error = %v, want ErrStateNotAllowed", err)
	}
	if _, err := f.repo.Dossier.Authorized(ctx, nil, d.ID, f.gestionnaireActor(), dossier.RouteBackoffice); !errors.Is(err, dossier.ErrStateNotAllowed) {
		t.Errorf("backoffice on draft error = %v, want ErrStateNotAllowed", err)
	}
	if _, err := f.repo.Dossier.Authorized(ctx, nil, d.ID, f.gestionnaireActor(), dossier.RouteCommentaire); !errors.Is(err, dossier.ErrStateNotAllowed) {
		t.Errorf("gestionnaire reading comments on draft error = %v, want ErrStateNotAllowed", err)
	}
	if _, err := f.repo.Dossier.AddCommentaire(ctx, nil, Request{DossierID: d.ID, Actor: f.gestionnaireActor(), Route: dossier.RouteCommentaire}, &model.Commentaire{Body: "Trop tot"}); !errors.Is(err, dossier.ErrStateNotAllowed) {
		t.Errorf("gestionnaire comment on draft error = %v, want ErrStateNotAllowed", err)
	}
	if _, err := f.repo.Dossier.Invite(ctx, nil, Request{DossierID: d.ID, Actor: f.gestionnaireActor(), Route: dossier.RouteInvite}, "expert@example.com"); !errors.Is(err, dossier.ErrStateNotAllowed) {
		t.Errorf("gestionnaire invite on draft error = %v, want ErrStateNotAllowed", err)
	}
	if commentaires, err := f.repo.Commentaire.ListForDossier(ctx, nil, d.ID, nil); err != nil || len(commentaires) != 0 {
		t.Errorf("draft commentaires = %d, %v, want none", len(commentaires), err)
	}
	if _, err := f.repo.Dossier.Authorized(ctx, nil, "missing", f.ownerActor(), dossier.RouteDescription); !errors.Is(err, dossier.ErrNotFound) {
		t.Errorf("missing dossier error = %v, want ErrNotFound", err)
	}

	// an invited user passes the ownership check
	if _, err := f.repo.Dossier.Invite(ctx, nil, Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RouteInvite}, stranger.Email); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}
	if _, err := f.repo.Dossier.Invite(ctx, nil, Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RouteInvite}, stranger.Email); err != nil {
		t.Fatalf("second Invite() error: %v", err)
	}
	got, err := f.repo.Dossier.Authorized(ctx, nil, d.ID, strangerActor, dossier.RouteDescription)
	if err != nil {
		t.Fatalf("invited user error = %v", err)
	}
	if len(got.Invites) != 1 {
		t.Errorf("got %d invites, want 1", len(got.Invites))
	}

	// a refused gate leaves the dossier untouched
	before := got.Version
	if _, err := f.repo.Dossier.UpdateChamps(ctx, nil, Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RouteRecapitulatif}, nil); !errors.Is(err, dossier.ErrStateNotAllowed) {
		t.Errorf("UpdateChamps() through recapitulatif error = %v, want ErrStateNotAllowed", err)
	}
	after, _ := f.repo.Dossier.GetById(ctx, nil, d.ID)
	if after.Version != before {
		t.Errorf("version moved from %d to %d on a refused save", before, after.Version)
	}
}

func TestDossierStaleVersion(t *testing.T) {
	f := newFixture(t)
	d := f.newDossier(t)

	stale := d.Version - 1
	_, err := f.repo.Dossier.ApplyAction(context.Background(), nil, Request{
		DossierID:       d.ID,
		Actor:           f.ownerActor(),
		Route:           dossier.RouteWorkflow,
		Action:          dossier.ActionInitiate,
		ExpectedVersion: &stale,
	})
	if !errors.Is(err, dossier.ErrStaleObject) {
		t.Errorf("ApplyAction() error = %v, want ErrStaleObject", err)
	}
}

func TestDossierApplyActionRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	d := f.newDossier(t)
	ctx := context.Background()

	if _, err := f.repo.Dossier.ApplyAction(ctx, nil, Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RouteWorkflow, Action: "bogus"}); !errors.Is(err, dossier.ErrInvalidAction) {
		t.Errorf("bogus action error = %v, want ErrInvalidAction", err)
	}

	admin := dossier.Actor{ID: f.admin.ID, Email: f.admin.Email, Role: dossier.ActorAdministrateur}
	if _, err := f.repo.Dossier.ApplyAction(ctx, nil, Request{DossierID: d.ID, Actor: admin, Route: dossier.RouteWorkflow, Action: dossier.ActionInitiate}); !errors.Is(err, dossier.ErrInvalidRole) {
		t.Errorf("administrateur action error = %v, want ErrInvalidRole", err)
	}
}

func TestDossierToggleFollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.initiated(t)

	req := Request{DossierID: d.ID, Actor: f.gestionnaireActor(), Route: dossier.RouteBackoffice}

	following, res, err := f.repo.Dossier.ToggleFollow(ctx, nil, req)
	if err != nil {
		t.Fatalf("ToggleFollow() error: %v", err)
	}
	if !following || res.To != dossier.StateUpdated {
		t.Errorf("follow = %v, state = %s, want true, updated", following, res.To)
	}
	if got := res.Dossier.ToDossier().FollowersEmails(); got != f.gestionnaire.Email {
		t.Errorf("FollowersEmails() = %q", got)
	}

	following, res, err = f.repo.Dossier.ToggleFollow(ctx, nil, req)
	if err != nil {
		t.Fatalf("second ToggleFollow() error: %v", err)
	}
	if following || res.Changed() {
		t.Errorf("unfollow = %v, changed = %v, want false, false", following, res.Changed())
	}
	if res.Dossier.ToDossier().TotalFollow() != 0 {
		t.Error("follow row survived the unfollow")
	}

	if _, _, err := f.repo.Dossier.ToggleFollow(ctx, nil, Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RouteBackoffice}); !errors.Is(err, dossier.ErrAccessDenied) {
		t.Errorf("user follow error = %v, want ErrAccessDenied", err)
	}
}

func TestDossierDecideAndArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.initiated(t)
	req := Request{DossierID: d.ID, Actor: f.gestionnaireActor(), Route: dossier.RouteBackoffice}

	res, err := f.repo.Dossier.Decide(ctx, nil, req, dossier.DecisionRefuse)
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if res.To != dossier.StateRefused {
		t.Errorf("state = %s, want refused", res.To)
	}
	if _, err := f.repo.Dossier.Decide(ctx, nil, req, dossier.DecisionWithoutContinuation); !errors.Is(err, dossier.ErrInvalidDecision) {
		t.Errorf("second Decide() error = %v, want ErrInvalidDecision", err)
	}

	res, err = f.repo.Dossier.Archive(ctx, nil, req)
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if !res.Dossier.Archived || res.Dossier.State != dossier.StateRefused {
		t.Errorf("archived = %v, state = %s", res.Dossier.Archived, res.Dossier.State)
	}

	if _, err := f.repo.Dossier.Authorized(ctx, nil, d.ID, f.ownerActor(), dossier.RouteCommentaire); !errors.Is(err, dossier.ErrNotFound) {
		t.Errorf("owner on archived dossier error = %v, want ErrNotFound", err)
	}
	if _, err := f.repo.Dossier.Authorized(ctx, nil, d.ID, f.gestionnaireActor(), dossier.RouteBackoffice); err != nil {
		t.Errorf("gestionnaire on archived dossier error = %v", err)
	}
}

func TestDossierEntreprise(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.newDossier(t)
	req := Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RouteEntreprise}

	res, err := f.repo.Dossier.SetEntreprise(ctx, nil, req,
		dossier.Entreprise{Siren: "418166096", RaisonSociale: "OCTO TECHNOLOGY"},
		dossier.Etablissement{Siret: "41816609600051", SiegeSocial: true})
	if err != nil {
		t.Fatalf("SetEntreprise() error: %v", err)
	}
	data := dossier.ExportEntrepriseData(res.Dossier.ToDossier())
	if data["entreprise_raison_sociale"] != "OCTO TECHNOLOGY" || data["etablissement_siret"] != "41816609600051" {
		t.Errorf("entreprise data = %v", data)
	}

	owner, _ := f.repo.User.GetById(ctx, nil, f.owner.ID)
	if owner.Siret != "41816609600051" {
		t.Errorf("user siret = %q", owner.Siret)
	}

	res, err = f.repo.Dossier.ResetEntreprise(ctx, nil, req)
	if err != nil {
		t.Fatalf("ResetEntreprise() error: %v", err)
	}
	if res.Dossier.Entreprise != nil || res.Dossier.Etablissement != nil {
		t.Error("entreprise survived the reset")
	}

	if _, err := f.repo.Dossier.ApplyAction(ctx, nil, Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RouteWorkflow, Action: dossier.ActionInitiate}); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := f.repo.Dossier.ResetEntreprise(ctx, nil, req); !errors.Is(err, dossier.ErrStateNotAllowed) {
		t.Errorf("ResetEntreprise() on initiated error = %v, want ErrStateNotAllowed", err)
	}
}

func TestDossierPieceJustificative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.newDossier(t)
	req := Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RoutePiecesJustificatives}

	file := &model.File{FileName: "kbis.pdf", UniqueFileName: "dossiers/" + d.ID + "/kbis.pdf", BucketName: "test", Size: 10}
	if _, err := f.repo.Dossier.AttachPieceJustificative(ctx, nil, req, "unknown", file); !errors.Is(err, dossier.ErrNotFound) {
		t.Errorf("unknown type error = %v, want ErrNotFound", err)
	}

	typeID := f.procedure.TypesDePieceJustificative[0].ID
	if _, err := f.repo.Dossier.AttachPieceJustificative(ctx, nil, req, typeID, file); err != nil {
		t.Fatalf("AttachPieceJustificative() error: %v", err)
	}

	pieces, err := f.repo.PieceJustificative.ListForDossier(ctx, nil, d.ID)
	if err != nil {
		t.Fatalf("ListForDossier() error: %v", err)
	}
	if len(pieces) != 1 || pieces[0].File.FileName != "kbis.pdf" || *pieces[0].TypeDePieceJustificativeID != typeID {
		t.Errorf("pieces = %+v", pieces)
	}

	if _, err := f.repo.Dossier.AttachCerfa(ctx, nil, Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RouteDescription}, &model.File{
		FileName: "cerfa.pdf", UniqueFileName: "dossiers/" + d.ID + "/cerfa.pdf", BucketName: "test",
	}); !errors.Is(err, dossier.ErrAccessDenied) {
		t.Errorf("AttachCerfa() without cerfa flag error = %v, want ErrAccessDenied", err)
	}
}

func TestDossierDestroy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.newDossier(t)
	if err := f.repo.Dossier.Destroy(ctx, nil, d.ID, f.ownerActor()); err != nil {
		t.Fatalf("Destroy() error: %v", err)
	}
	if _, err := f.repo.Dossier.GetById(ctx, nil, d.ID); !errors.Is(err, dossier.ErrNotFound) {
		t.Errorf("GetById() after destroy error = %v, want ErrNotFound", err)
	}
	var champs int64
	f.repo.DB.Model(&model.Champ{}).Where("dossier_id = ?", d.ID).Count(&champs)
	if champs != 0 {
		t.Errorf("%d champs left after destroy", champs)
	}

	sent := f.initiated(t)
	if err := f.repo.Dossier.Destroy(ctx, nil, sent.ID, f.ownerActor()); !errors.Is(err, dossier.ErrStateNotAllowed) {
		t.Errorf("Destroy() on initiated error = %v, want ErrStateNotAllowed", err)
	}
}

func TestDossierSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.initiated(t)
	f.newDossier(t)

	if _, err := f.repo.Dossier.AddCommentaire(ctx, nil, Request{DossierID: d.ID, Actor: f.ownerActor(), Route: dossier.RouteCommentaire}, &model.Commentaire{Body: "Piece Manquante"}); err != nil {
		t.Fatalf("comment: %v", err)
	}

	tests := []struct {
		term string
		want int64
	}{
		{"OWNER@example", 1},
		{"manquante", 1},
		{d.ID, 1},
		{"nothing matches", 0},
		{"  ", 0},
	}
	for _, tt := range tests {
		got, total, err := f.repo.Dossier.Search(ctx, nil, f.gestionnaire.ID, tt.term, 1, 20)
		if err != nil {
			t.Fatalf("Search(%q) error: %v", tt.term, err)
		}
		if total != tt.want || int64(len(got)) != tt.want {
			t.Errorf("Search(%q) = %d results (total %d), want %d", tt.term, len(got), total, tt.want)
		}
	}

	other, err := f.repo.Gestionnaire.Create(ctx, nil, &model.Gestionnaire{Email: "other@example.com"})
	if err != nil {
		t.Fatalf("create gestionnaire: %v", err)
	}
	if _, total, _ := f.repo.Dossier.Search(ctx, nil, other.ID, "owner", 1, 20); total != 0 {
		t.Errorf("unassigned gestionnaire found %d dossiers", total)
	}
}

func TestDossierListForExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.initiated(t)
	second := f.initiated(t)
	f.newDossier(t)

	dossiers, err := f.repo.Dossier.ListForExport(ctx, nil, f.procedure.ID)
	if err != nil {
		t.Fatalf("ListForExport() error: %v", err)
	}
	if len(dossiers) != 2 {
		t.Fatalf("got %d dossiers, want 2 (drafts excluded)", len(dossiers))
	}

	views := make([]dossier.Dossier, len(dossiers))
	for i, d := range dossiers {
		views[i] = d.ToDossier()
	}
	table := dossier.BuildTable(dossier.OrderedFields(f.procedure.ToProcedure()), views)

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}
	back, err := dossier.ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	records := back.Records()
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	ids := map[string]bool{records[0]["id"]: true, records[1]["id"]: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Errorf("exported ids = %v", ids)
	}
	if records[0]["state"] != string(dossier.StateInitiated) {
		t.Errorf("state = %q", records[0]["state"])
	}

	total, err := f.repo.Procedure.TotalDossier(ctx, nil, f.procedure.ID)
	if err != nil || total != 2 {
		t.Errorf("TotalDossier() = %d, %v, want 2", total, err)
	}
}

func TestDossierListForProcedureAppliesPreferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.gestionnaire.ID

	var projet string
	for _, tdc := range f.procedure.TypesDeChamp {
		if tdc.Libelle == "Nom du projet" {
			projet = tdc.ID
		}
	}

	first := f.initiated(t)
	second := f.initiated(t)

	zoe, err := f.repo.User.Create(ctx, nil, &model.User{Email: "zoe@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	third, err := f.repo.Dossier.Create(ctx, nil, f.procedure.ID, zoe.ID)
	if err != nil {
		t.Fatalf("create dossier: %v", err)
	}
	zoeActor := dossier.Actor{ID: zoe.ID, Email: zoe.Email, Role: dossier.ActorUser}
	if _, err := f.repo.Dossier.ApplyAction(ctx, nil, Request{DossierID: third.ID, Actor: zoeActor, Route: dossier.RouteWorkflow, Action: dossier.ActionInitiate}); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	f.newDossier(t)

	for d, value := range map[string]string{first.ID: "Jardin partagé", second.ID: "Salle de sport"} {
		req := Request{DossierID: d, Actor: f.ownerActor(), Route: dossier.RouteDescription}
		if _, err := f.repo.Dossier.UpdateChamps(ctx, nil, req, map[string]string{projet: value}); err != nil {
			t.Fatalf("UpdateChamps() error: %v", err)
		}
	}

	byID := []string{first.ID, second.ID, third.ID}
	sort.Strings(byID)
	byIDDesc := []string{byID[2], byID[1], byID[0]}
	projetKey := dossier.FieldColumnKey(projet)

	tests := []struct {
		name  string
		prefs []dossier.Preference
		want  []string
	}{
		{"defaults list newest first", nil, []string{third.ID, second.ID, first.ID}},
		{"id ascending", []dossier.Preference{{Group: dossier.GroupDossier, Key: "dossier_id", Order: dossier.SortAsc}}, byID},
		{"id descending", []dossier.Preference{{Group: dossier.GroupDossier, Key: "dossier_id", Order: dossier.SortDesc}}, byIDDesc},
		{"email then creation", []dossier.Preference{
			{Group: dossier.GroupUser, Key: "email", Order: dossier.SortDesc},
			{Group: dossier.GroupDossier, Key: "created_at", Order: dossier.SortAsc},
		}, []string{third.ID, first.ID, second.ID}},
		{"champ filter", []dossier.Preference{
			{Group: dossier.GroupDossier, Key: "dossier_id"},
			{Group: dossier.GroupChamps, Key: projetKey, Filter: "JARDIN"},
		}, []string{first.ID}},
		{"email filter", []dossier.Preference{{Group: dossier.GroupUser, Key: "email", Filter: "zoe@"}}, []string{third.ID}},
		{"filter without match", []dossier.Preference{{Group: dossier.GroupChamps, Key: projetKey, Filter: "piscine"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prefs != nil {
				if err := f.repo.Preference.Replace(ctx, nil, g, &f.procedure.ID, tt.prefs); err != nil {
					t.Fatalf("Replace() error: %v", err)
				}
			}
			columns, err := f.repo.Preference.Resolve(ctx, g, &f.procedure.ID)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}

			dossiers, total, err := f.repo.Dossier.ListForProcedure(ctx, nil, g, f.procedure.ID, columns, 1, 20)
			if err != nil {
				t.Fatalf("ListForProcedure() error: %v", err)
			}
			got := make([]string, 0, len(dossiers))
			for _, d := range dossiers {
				got = append(got, d.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ListForProcedure() = %v, want %v", got, tt.want)
			}
			if total != int64(len(tt.want)) {
				t.Errorf("total = %d, want %d", total, len(tt.want))
			}
		})
	}

	// the sort order holds across pages
	if err := f.repo.Preference.Replace(ctx, nil, g, &f.procedure.ID, []dossier.Preference{{Group: dossier.GroupDossier, Key: "dossier_id", Order: dossier.SortDesc}}); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	columns, err := f.repo.Preference.Resolve(ctx, g, &f.procedure.ID)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	page, total, err := f.repo.Dossier.ListForProcedure(ctx, nil, g, f.procedure.ID, columns, 2, 1)
	if err != nil {
		t.Fatalf("ListForProcedure() error: %v", err)
	}
	if total != 3 || len(page) != 1 || page[0].ID != byIDDesc[1] {
		t.Errorf("page 2 = %d dossiers (total %d), want %s", len(page), total, byIDDesc[1])
	}
}
