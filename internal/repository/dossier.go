package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	constant "github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DossierRepository struct {
	*baseRepository
}

// withView preloads everything the gate and the export engine read.
func withView(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Procedure").
		Preload("Procedure.TypesDeChamp", orderByPlace).
		Preload("Procedure.TypesDePieceJustificative", orderByPlace).
		Preload("Procedure.Gestionnaires").
		Preload("Champs.TypeDeChamp").
		Preload("Entreprise").
		Preload("Etablissement").
		Preload("Individual").
		Preload("Follows.Gestionnaire").
		Preload("Invites").
		Preload("Cerfas.File").
		Preload("PiecesJustificatives.File")
}

func (dr DossierRepository) GetById(ctx context.Context, tx *gorm.DB, dossierID string) (*model.Dossier, error) {
	dr.logger.Debugf("Get dossier by id: %s \n", dossierID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var d model.Dossier
	if err := withView(db.WithContext(ctx)).Where("id = ?", dossierID).First(&d).Error; err != nil {
		return nil, notFound(err, "dossier")
	}

	return &d, nil
}

// Create opens a draft dossier on an accepting procedure with one empty champ
// per field, plus an empty individual when the procedure is for individuals.
func (dr DossierRepository) Create(ctx context.Context, tx *gorm.DB, procedureID, userID string) (*model.Dossier, error) {
	dr.logger.Debugf("Create dossier on procedure: %s for user: %s \n", procedureID, userID)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var created model.Dossier
	err := dr.withTx(dr.getDB(tx), func(tx *gorm.DB) error {
		var procedure model.Procedure
		if err := tx.WithContext(ctx).
			Preload("TypesDeChamp", orderByPlace).
			Where("id = ?", procedureID).
			First(&procedure).Error; err != nil {
			return notFound(err, "procedure")
		}

		p := procedure.ToProcedure()
		if !p.Accepting() {
			return fmt.Errorf("procedure %s: %w", procedureID, dossier.ErrProcedureNotAccepting)
		}

		created = model.Dossier{
			State:       dossier.StateDraft,
			UserID:      userID,
			ProcedureID: procedureID,
			Version:     1,
		}
		for _, c := range dossier.MaterializeChamps(p) {
			created.Champs = append(created.Champs, model.Champ{TypeDeChampID: c.FieldID, Value: c.Value})
		}
		if p.ForIndividual {
			created.Individual = &model.Individual{}
		}

		return tx.WithContext(ctx).Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	return dr.GetById(ctx, tx, created.ID)
}

// Request names who acts on which dossier through which route. Action is the
// workflow action fed to the transition table once the change is written;
// leave it empty for saves that never move the dossier.
type Request struct {
	DossierID string
	Actor     dossier.Actor
	Route     dossier.Route
	Action    dossier.Action
	// ExpectedVersion, when set, must equal the stored version.
	ExpectedVersion *int
}

type Result struct {
	Dossier *model.Dossier
	From    dossier.State
	To      dossier.State
}

func (r Result) Changed() bool {
	return r.From != r.To
}

// changeSet collects the column updates and the workflow action of one save.
type changeSet struct {
	fields map[string]any
	action dossier.Action
}

func (c *changeSet) set(column string, value any) {
	if c.fields == nil {
		c.fields = map[string]any{}
	}
	c.fields[column] = value
}

type mutation func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error

// authorize runs the access gate. Archived dossiers are hidden from users.
func authorize(d *model.Dossier, actor dossier.Actor, route dossier.Route) error {
	view := d.ToDossier()
	if actor.Role == dossier.ActorUser && d.Archived {
		return fmt.Errorf("%s: %w", route.Name, dossier.ErrNotFound)
	}
	return dossier.Authorize(actor, route, &view)
}

// Authorized loads the dossier and runs the access gate for a read.
func (dr DossierRepository) Authorized(ctx context.Context, tx *gorm.DB, dossierID string, actor dossier.Actor, route dossier.Route) (*model.Dossier, error) {
	d, err := dr.GetById(ctx, tx, dossierID)
	if err != nil {
		return nil, err
	}
	if err := authorize(d, actor, route); err != nil {
		return nil, err
	}
	return d, nil
}

// lock takes the row lock and then loads the full view inside tx.
func (dr DossierRepository) lock(ctx context.Context, tx *gorm.DB, req Request) (*model.Dossier, error) {
	var row model.Dossier
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "version").
		Where("id = ?", req.DossierID).
		First(&row).Error; err != nil {
		return nil, notFound(err, "dossier")
	}

	d, err := dr.GetById(ctx, tx, req.DossierID)
	if err != nil {
		return nil, err
	}
	if err := authorize(d, req.Actor, req.Route); err != nil {
		return nil, err
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion != d.Version {
		return nil, dossier.ErrStaleObject
	}
	return d, nil
}

// apply is the read-lock-transition-write cycle every dossier save goes
// through. mutate runs under the lock after the gate; the transition table
// then picks the next state and the row is written with a version check.
func (dr DossierRepository) apply(ctx context.Context, tx *gorm.DB, req Request, mutate mutation) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	result := &Result{}
	err := dr.withTx(dr.getDB(tx), func(tx *gorm.DB) error {
		d, err := dr.lock(ctx, tx, req)
		if err != nil {
			return err
		}

		cs := &changeSet{action: req.Action}
		if mutate != nil {
			if err := mutate(tx, d, cs); err != nil {
				return err
			}
		}

		result.From = d.State
		result.To = d.State
		if next, ok := cs.fields["state"].(dossier.State); ok {
			result.To = next
		}

		if cs.action != "" {
			role, err := req.Actor.Role.WorkflowRole()
			if err != nil {
				return err
			}
			next, err := dossier.NextState(result.To, role, cs.action)
			if err != nil {
				return err
			}
			if next != result.To {
				cs.set("state", next)
				result.To = next
			}
		}

		return saveVersioned(ctx, tx, &model.Dossier{}, d.ID, d.Version, cs.fields)
	})
	if err != nil {
		return nil, err
	}

	result.Dossier, err = dr.GetById(ctx, tx, req.DossierID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyAction feeds a bare workflow action to the transition table.
func (dr DossierRepository) ApplyAction(ctx context.Context, tx *gorm.DB, req Request) (*Result, error) {
	dr.logger.Debugf("Apply action %s by %s on dossier: %s \n", req.Action, req.Actor.Role, req.DossierID)

	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", dossier.ErrInvalidAction, req.Action)
	}
	if _, err := req.Actor.Role.WorkflowRole(); err != nil {
		return nil, err
	}
	return dr.apply(ctx, tx, req, nil)
}

func requireGestionnaire(actor dossier.Actor) error {
	if actor.Role != dossier.ActorGestionnaire {
		return fmt.Errorf("gestionnaire only: %w", dossier.ErrAccessDenied)
	}
	return nil
}

// Decide records an administrative refusal or a without continuation.
func (dr DossierRepository) Decide(ctx context.Context, tx *gorm.DB, req Request, decision dossier.Decision) (*Result, error) {
	dr.logger.Debugf("Decide %s on dossier: %s \n", decision, req.DossierID)

	if err := requireGestionnaire(req.Actor); err != nil {
		return nil, err
	}
	req.Action = ""
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		next, err := dossier.Decide(d.State, decision)
		if err != nil {
			return err
		}
		cs.set("state", next)
		return nil
	})
}

// Archive hides the dossier from its owner. Its state is kept.
func (dr DossierRepository) Archive(ctx context.Context, tx *gorm.DB, req Request) (*Result, error) {
	dr.logger.Debugf("Archive dossier: %s \n", req.DossierID)

	if err := requireGestionnaire(req.Actor); err != nil {
		return nil, err
	}
	req.Action = ""
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		cs.set("archived", true)
		return nil
	})
}

// UpdateChamps saves champ values keyed by field id, then feeds the update
// action to the transition table.
func (dr DossierRepository) UpdateChamps(ctx context.Context, tx *gorm.DB, req Request, values map[string]string) (*Result, error) {
	dr.logger.Debugf("Update champs of dossier: %s with: %v \n", req.DossierID, values)

	req.Action = dossier.ActionUpdate
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		champs := make(map[string]string, len(d.Champs))
		for _, c := range d.Champs {
			champs[c.TypeDeChampID] = c.ID
		}

		for fieldID, value := range values {
			champID, ok := champs[fieldID]
			if !ok {
				return fmt.Errorf("champ for field %s: %w", fieldID, dossier.ErrNotFound)
			}
			if err := tx.WithContext(ctx).Model(&model.Champ{}).Where("id = ?", champID).Update("value", value).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateIndividual saves the identity of the person behind the dossier.
func (dr DossierRepository) UpdateIndividual(ctx context.Context, tx *gorm.DB, req Request, individual model.Individual) (*Result, error) {
	dr.logger.Debugf("Update individual of dossier: %s \n", req.DossierID)

	req.Action = dossier.ActionUpdate
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		if d.Individual == nil {
			return fmt.Errorf("individual of dossier %s: %w", d.ID, dossier.ErrNotFound)
		}
		return tx.WithContext(ctx).Model(&model.Individual{}).Where("id = ?", d.Individual.ID).Updates(map[string]any{
			"gender":    individual.Gender,
			"nom":       individual.Nom,
			"prenom":    individual.Prenom,
			"birthdate": individual.Birthdate,
		}).Error
	})
}

// AddCommentaire stores a comment by the actor, then feeds the comment
// action to the transition table.
func (dr DossierRepository) AddCommentaire(ctx context.Context, tx *gorm.DB, req Request, commentaire *model.Commentaire) (*Result, error) {
	dr.logger.Debugf("Add commentaire on dossier: %s by %s \n", req.DossierID, req.Actor.Email)

	if _, err := req.Actor.Role.WorkflowRole(); err != nil {
		return nil, err
	}
	req.Action = dossier.ActionComment
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		if commentaire.ChampID != nil {
			found := false
			for _, c := range d.Champs {
				if c.ID == *commentaire.ChampID {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("champ %s: %w", *commentaire.ChampID, dossier.ErrNotFound)
			}
		}

		commentaire.DossierID = d.ID
		commentaire.Email = req.Actor.Email
		if commentaire.PieceJustificative != nil {
			commentaire.PieceJustificative.DossierID = d.ID
			commentaire.PieceJustificative.UserID = req.Actor.ID
			commentaire.PieceJustificative.TypeDePieceJustificativeID = nil
		}
		return tx.WithContext(ctx).Create(commentaire).Error
	})
}

// ToggleFollow makes the gestionnaire follow the dossier, or stop following
// it. Only starting to follow counts as the follow action.
func (dr DossierRepository) ToggleFollow(ctx context.Context, tx *gorm.DB, req Request) (following bool, result *Result, err error) {
	dr.logger.Debugf("Toggle follow of dossier: %s by gestionnaire: %s \n", req.DossierID, req.Actor.ID)

	if err := requireGestionnaire(req.Actor); err != nil {
		return false, nil, err
	}
	req.Action = ""
	result, err = dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		existing := tx.WithContext(ctx).
			Where("dossier_id = ? AND gestionnaire_id = ?", d.ID, req.Actor.ID).
			Delete(&model.Follow{})
		if existing.Error != nil {
			return existing.Error
		}
		if existing.RowsAffected > 0 {
			return nil
		}

		following = true
		cs.action = dossier.ActionFollow
		return tx.WithContext(ctx).Create(&model.Follow{DossierID: d.ID, GestionnaireID: req.Actor.ID}).Error
	})
	if err != nil {
		return false, nil, err
	}
	return following, result, nil
}

// Invite shares the dossier with email. Users invite users and gestionnaires
// invite gestionnaires. Inviting the same email twice is a no-op.
func (dr DossierRepository) Invite(ctx context.Context, tx *gorm.DB, req Request, email string) (*Result, error) {
	dr.logger.Debugf("Invite %s on dossier: %s \n", email, req.DossierID)

	var kind dossier.InviteKind
	switch req.Actor.Role {
	case dossier.ActorUser:
		kind = dossier.InviteUser
	case dossier.ActorGestionnaire:
		kind = dossier.InviteGestionnaire
	default:
		return nil, fmt.Errorf("invite: %w", dossier.ErrAccessDenied)
	}

	email = strings.TrimSpace(email)
	req.Action = ""
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		for _, inv := range d.Invites {
			if inv.Type == kind && strings.EqualFold(inv.Email, email) {
				return nil
			}
		}
		return tx.WithContext(ctx).Create(&model.Invite{
			DossierID:   d.ID,
			Email:       email,
			EmailSender: req.Actor.Email,
			Type:        kind,
		}).Error
	})
}

func requireOwner(d *model.Dossier, actor dossier.Actor) error {
	if actor.Role != dossier.ActorUser || d.UserID != actor.ID {
		return fmt.Errorf("owner only: %w", dossier.ErrAccessDenied)
	}
	return nil
}

// SetEntreprise links a registry snapshot to the dossier, replacing any
// previous one, and remembers the siret on the owner.
func (dr DossierRepository) SetEntreprise(ctx context.Context, tx *gorm.DB, req Request, entreprise dossier.Entreprise, etablissement dossier.Etablissement) (*Result, error) {
	dr.logger.Debugf("Set entreprise %s on dossier: %s \n", etablissement.Siret, req.DossierID)

	req.Action = ""
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		if err := requireOwner(d, req.Actor); err != nil {
			return err
		}
		if err := deleteEntreprise(ctx, tx, d.ID); err != nil {
			return err
		}

		e := model.NewEntreprise(d.ID, entreprise)
		if err := tx.WithContext(ctx).Create(&e).Error; err != nil {
			return err
		}
		etab := model.NewEtablissement(d.ID, e.ID, etablissement)
		if err := tx.WithContext(ctx).Create(&etab).Error; err != nil {
			return err
		}

		return tx.WithContext(ctx).Model(&model.User{}).Where("id = ?", d.UserID).Update("siret", etablissement.Siret).Error
	})
}

// ResetEntreprise unlinks the entreprise and etablissement snapshot.
func (dr DossierRepository) ResetEntreprise(ctx context.Context, tx *gorm.DB, req Request) (*Result, error) {
	dr.logger.Debugf("Reset entreprise of dossier: %s \n", req.DossierID)

	req.Action = ""
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		if err := requireOwner(d, req.Actor); err != nil {
			return err
		}
		cs.set("mandataire_social", false)
		return deleteEntreprise(ctx, tx, d.ID)
	})
}

func deleteEntreprise(ctx context.Context, tx *gorm.DB, dossierID string) error {
	if err := tx.WithContext(ctx).Where("dossier_id = ?", dossierID).Delete(&model.Etablissement{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Where("dossier_id = ?", dossierID).Delete(&model.Entreprise{}).Error
}

// AttachPieceJustificative stores an uploaded file as the piece of the given
// type, then feeds the update action to the transition table.
func (dr DossierRepository) AttachPieceJustificative(ctx context.Context, tx *gorm.DB, req Request, typeID string, file *model.File) (*Result, error) {
	dr.logger.Debugf("Attach piece justificative of type %s on dossier: %s \n", typeID, req.DossierID)

	req.Action = dossier.ActionUpdate
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		known := false
		for _, t := range d.Procedure.TypesDePieceJustificative {
			if t.ID == typeID {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("type de piece justificative %s: %w", typeID, dossier.ErrNotFound)
		}

		return tx.WithContext(ctx).Create(&model.PieceJustificative{
			DossierID:                  d.ID,
			TypeDePieceJustificativeID: &typeID,
			UserID:                     req.Actor.ID,
			File:                       *file,
		}).Error
	})
}

// AttachCerfa stores the official form when the procedure accepts one.
func (dr DossierRepository) AttachCerfa(ctx context.Context, tx *gorm.DB, req Request, file *model.File) (*Result, error) {
	dr.logger.Debugf("Attach cerfa on dossier: %s \n", req.DossierID)

	req.Action = dossier.ActionUpdate
	return dr.apply(ctx, tx, req, func(tx *gorm.DB, d *model.Dossier, cs *changeSet) error {
		if !d.Procedure.CerfaFlag {
			return fmt.Errorf("cerfa upload is disabled on procedure %s: %w", d.ProcedureID, dossier.ErrAccessDenied)
		}
		return tx.WithContext(ctx).Create(&model.Cerfa{
			DossierID: d.ID,
			UserID:    req.Actor.ID,
			File:      *file,
		}).Error
	})
}

// Destroy deletes a draft dossier of the actor with everything attached.
// Stored objects are removed once the rows are gone.
func (dr DossierRepository) Destroy(ctx context.Context, tx *gorm.DB, dossierID string, actor dossier.Actor) error {
	dr.logger.Debugf("Destroy dossier: %s \n", dossierID)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var files []model.File
	err := dr.withTx(dr.getDB(tx), func(tx *gorm.DB) error {
		d, err := dr.lock(ctx, tx, Request{DossierID: dossierID, Actor: actor, Route: dossier.RouteDestroy})
		if err != nil {
			return err
		}
		if err := requireOwner(d, actor); err != nil {
			return err
		}

		for _, pj := range d.PiecesJustificatives {
			files = append(files, pj.File)
		}
		for _, c := range d.Cerfas {
			files = append(files, c.File)
		}

		if err := tx.WithContext(ctx).Where("dossier_id = ?", d.ID).Delete(&model.Commentaire{}).Error; err != nil {
			return err
		}
		if err := deleteEntreprise(ctx, tx, d.ID); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Select("Champs", "Individual", "Follows", "Invites", "PiecesJustificatives", "Cerfas").Delete(d).Error; err != nil {
			return err
		}

		ids := make([]string, 0, len(files))
		for _, f := range files {
			ids = append(ids, f.ID)
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.WithContext(ctx).Where("id IN ?", ids).Delete(&model.File{}).Error
	})
	if err != nil {
		return err
	}

	dr.removeObjects(ctx, files)
	return nil
}

// ListForUser returns the dossiers the user owns or was invited on, without
// archived ones.
func (dr DossierRepository) ListForUser(ctx context.Context, tx *gorm.DB, actor dossier.Actor) ([]model.Dossier, error) {
	dr.logger.Debugf("List dossiers of user: %s \n", actor.ID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var out []model.Dossier
	if err := db.WithContext(ctx).
		Preload("Procedure").
		Where("archived = ?", false).
		Where("(user_id = ? OR EXISTS (SELECT 1 FROM invites WHERE invites.dossier_id = dossiers.id AND invites.type = ? AND LOWER(invites.email) = LOWER(?)))",
			actor.ID, dossier.InviteUser, actor.Email).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// backoffice restricts to non draft dossiers of procedures the gestionnaire
// is assigned to.
func backoffice(db *gorm.DB, gestionnaireID string) *gorm.DB {
	return db.
		Joins("JOIN assign_tos ON assign_tos.procedure_id = dossiers.procedure_id AND assign_tos.gestionnaire_id = ?", gestionnaireID).
		Where("dossiers.state <> ?", dossier.StateDraft)
}

func paginate(db *gorm.DB, page, pageSize uint) *gorm.DB {
	if page == 0 {
		page = 1
	}
	return db.Offset(int((page - 1) * pageSize)).Limit(int(pageSize))
}

// listingFilters narrows the query with the filter of every filterable
// column. Matching is a case insensitive substring match.
func listingFilters(query *gorm.DB, columns []dossier.ResolvedColumn) *gorm.DB {
	for _, c := range columns {
		filter := strings.TrimSpace(c.Filter)
		if filter == "" || !c.Column.Filterable {
			continue
		}
		like := "%" + strings.ToLower(filter) + "%"

		switch c.Column.Table {
		case "":
			query = query.Where("LOWER(?) LIKE ?", clause.Column{Table: "dossiers", Name: c.Column.Attr}, like)
		case dossier.GroupUser:
			query = query.Where("LOWER(?) LIKE ?", clause.Column{Table: "users", Name: c.Column.Attr}, like)
		case dossier.GroupChamps:
			query = query.Where("EXISTS (SELECT 1 FROM champs WHERE champs.dossier_id = dossiers.id AND champs.type_de_champ_id = ? AND LOWER(champs.value) LIKE ?)",
				c.Column.Attr, like)
		}
	}
	return query
}

// listingOrder sorts by the sortable columns in preference order. Without
// any, the newest dossiers come first. The id breaks ties.
func listingOrder(query *gorm.DB, columns []dossier.ResolvedColumn) *gorm.DB {
	sorted := false
	for _, c := range columns {
		if c.Order == dossier.SortNone || !c.Column.Sortable {
			continue
		}

		var col clause.Column
		switch c.Column.Table {
		case "":
			col = clause.Column{Table: "dossiers", Name: c.Column.Attr}
		case dossier.GroupUser:
			col = clause.Column{Table: "users", Name: c.Column.Attr}
		default:
			continue
		}
		query = query.Order(clause.OrderByColumn{Column: col, Desc: c.Order == dossier.SortDesc})
		sorted = true
	}
	if !sorted {
		query = query.Order("dossiers.created_at DESC")
	}
	return query.Order("dossiers.id")
}

// ListForProcedure pages through the procedure's dossiers for an assigned
// gestionnaire, filtered and sorted by the listing columns.
func (dr DossierRepository) ListForProcedure(ctx context.Context, tx *gorm.DB, gestionnaireID, procedureID string, columns []dossier.ResolvedColumn, page, pageSize uint) ([]model.Dossier, int64, error) {
	dr.logger.Debugf("List dossiers of procedure: %s for gestionnaire: %s \n", procedureID, gestionnaireID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := backoffice(db.WithContext(ctx).Model(&model.Dossier{}), gestionnaireID).
		Joins("JOIN users ON users.id = dossiers.user_id").
		Where("dossiers.procedure_id = ?", procedureID)
	query = listingFilters(query, columns)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []model.Dossier
	if err := listingOrder(paginate(withView(query), page, pageSize), columns).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Search matches the term, case insensitively, against the dossier id, the
// owner email, champ values, comment bodies and the individual's names.
func (dr DossierRepository) Search(ctx context.Context, tx *gorm.DB, gestionnaireID, term string, page, pageSize uint) ([]model.Dossier, int64, error) {
	dr.logger.Debugf("Search dossiers for gestionnaire: %s with term: %s \n", gestionnaireID, term)

	term = strings.TrimSpace(term)
	if term == "" {
		return []model.Dossier{}, 0, nil
	}

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	like := "%" + strings.ToLower(term) + "%"
	query := backoffice(db.WithContext(ctx).Model(&model.Dossier{}), gestionnaireID).
		Joins("JOIN users ON users.id = dossiers.user_id").
		Where("("+
			"dossiers.id = ?"+
			" OR LOWER(users.email) LIKE ?"+
			" OR EXISTS (SELECT 1 FROM champs WHERE champs.dossier_id = dossiers.id AND LOWER(champs.value) LIKE ?)"+
			" OR EXISTS (SELECT 1 FROM commentaires WHERE commentaires.dossier_id = dossiers.id AND LOWER(commentaires.body) LIKE ?)"+
			" OR EXISTS (SELECT 1 FROM individuals WHERE individuals.dossier_id = dossiers.id AND (LOWER(individuals.nom) LIKE ? OR LOWER(individuals.prenom) LIKE ?))"+
			")",
			term, like, like, like, like, like)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []model.Dossier
	if err := paginate(withView(query), page, pageSize).
		Order("dossiers.updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListForExport returns every non draft dossier of the procedure, oldest
// first, with the associations the export rows read.
func (dr DossierRepository) ListForExport(ctx context.Context, tx *gorm.DB, procedureID string) ([]model.Dossier, error) {
	dr.logger.Debugf("List dossiers for export of procedure: %s \n", procedureID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var out []model.Dossier
	if err := withView(db.WithContext(ctx)).
		Where("procedure_id = ? AND state <> ?", procedureID, dossier.StateDraft).
		Order("created_at").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// IsGateRefusal reports whether err came from the access gate or a
// missing record.
func IsGateRefusal(err error) bool {
	return errors.Is(err, dossier.ErrNotFound) || errors.Is(err, dossier.ErrStateNotAllowed)
}
