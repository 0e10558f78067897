package model

// User is a citizen filling dossiers.
type User struct {
	BaseModel
	Email     string `gorm:"unique;not null;type:citext" json:"email" form:"email" binding:"required,email"`
	FirstName string `gorm:"type:varchar(60);not null;default:''" json:"firstName" form:"firstName"`
	LastName  string `gorm:"type:varchar(60);not null;default:''" json:"lastName" form:"lastName"`
	// Siret remembers the last siret the user entered.
	Siret string `gorm:"type:varchar(14);default:null" json:"siret" form:"siret"`
}

func (u User) TableName() string {
	return "users"
}

// Gestionnaire instructs the dossiers of the procedures they are assigned to.
type Gestionnaire struct {
	BaseModel
	Email            string      `gorm:"unique;not null;type:citext" json:"email"`
	AdministrateurID string      `gorm:"type:text;index" json:"administrateurId"`
	Procedures       []Procedure `gorm:"many2many:assign_tos;" json:"-"`
}

func (g Gestionnaire) TableName() string {
	return "gestionnaires"
}

// Administrateur builds procedures and assigns gestionnaires to them.
type Administrateur struct {
	BaseModel
	Email string `gorm:"unique;not null;type:citext" json:"email"`
}

func (a Administrateur) TableName() string {
	return "administrateurs"
}

// AssignTo is the join row between a gestionnaire and a procedure.
type AssignTo struct {
	GestionnaireID string `gorm:"type:text;primaryKey" json:"gestionnaireId"`
	ProcedureID    string `gorm:"type:text;primaryKey" json:"procedureId"`
}

func (a AssignTo) TableName() string {
	return "assign_tos"
}
