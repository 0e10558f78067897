package repository

import (
	"context"
	"testing"

	"github.com/SeakMengs/DossierFlow/internal/database"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
)

// newTestRepository opens a fresh in-memory database per test. Callers must
// be top-level tests: the test name is part of the DSN.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.ConnectSqlite(database.InMemoryDSN(t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewRepository(db, util.NewTestLogger(), nil)
}

type fixture struct {
	repo         *Repository
	admin        *model.Administrateur
	gestionnaire *model.Gestionnaire
	owner        *model.User
	procedure    *model.Procedure
}

func (f fixture) ownerActor() dossier.Actor {
	return dossier.Actor{ID: f.owner.ID, Email: f.owner.Email, Role: dossier.ActorUser}
}

func (f fixture) gestionnaireActor() dossier.Actor {
	return dossier.Actor{ID: f.gestionnaire.ID, Email: f.gestionnaire.Email, Role: dossier.ActorGestionnaire}
}

// newFixture builds a published procedure with two fields and one piece
// type, an assigned gestionnaire and a user.
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	repo := newTestRepository(t)

	admin, err := repo.Administrateur.Create(ctx, nil, &model.Administrateur{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	g, err := repo.Gestionnaire.Create(ctx, nil, &model.Gestionnaire{Email: "instructeur@example.com", AdministrateurID: admin.ID})
	if err != nil {
		t.Fatalf("create gestionnaire: %v", err)
	}
	owner, err := repo.User.Create(ctx, nil, &model.User{Email: "owner@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	p, err := repo.Procedure.Create(ctx, nil, &model.Procedure{
		Libelle:          "Demande de subvention",
		Description:      "Aide aux associations",
		AdministrateurID: admin.ID,
		TypesDeChamp: []model.TypeDeChamp{
			{Libelle: "Nom du projet"},
			{Libelle: "Montant"},
		},
		TypesDePieceJustificative: []model.TypeDePieceJustificative{
			{Libelle: "Kbis"},
		},
	})
	if err != nil {
		t.Fatalf("create procedure: %v", err)
	}
	if _, err := repo.Procedure.Publish(ctx, nil, p.ID, admin.ID, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := repo.Procedure.ChangeAssignment(ctx, nil, p.ID, admin.ID, g.ID, Assign); err != nil {
		t.Fatalf("assign: %v", err)
	}

	p, err = repo.Procedure.GetById(ctx, nil, p.ID)
	if err != nil {
		t.Fatalf("reload procedure: %v", err)
	}

	return fixture{repo: repo, admin: admin, gestionnaire: g, owner: owner, procedure: p}
}

func (f fixture) newDossier(t *testing.T) *model.Dossier {
	t.Helper()
	d, err := f.repo.Dossier.Create(context.Background(), nil, f.procedure.ID, f.owner.ID)
	if err != nil {
		t.Fatalf("create dossier: %v", err)
	}
	return d
}

// initiated returns a dossier the owner already sent.
func (f fixture) initiated(t *testing.T) *model.Dossier {
	t.Helper()
	d := f.newDossier(t)
	res, err := f.repo.Dossier.ApplyAction(context.Background(), nil, Request{
		DossierID: d.ID,
		Actor:     f.ownerActor(),
		Route:     dossier.RouteWorkflow,
		Action:    dossier.ActionInitiate,
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	return res.Dossier
}
