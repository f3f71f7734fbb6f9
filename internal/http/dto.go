package http

import (
	"time"

	"fintechapi/internal/core"
)

type individualView struct {
	Nome     string     `json:"nome"`
	CPF      string     `json:"cpf"`
	DataNasc *core.Date `json:"dataNasc,omitempty"`
}

type organizationView struct {
	CNPJ        string `json:"cnpj"`
	RazaoSocial string `json:"razaoSocial"`
}

type userView struct {
	IDUsuario      int64             `json:"idUsuario"`
	TipoUsuario    core.AccountKind  `json:"tipoUsuario"`
	Email          string            `json:"email"`
	CriadoEm       time.Time         `json:"criadoEm"`
	PessoaFisica   *individualView   `json:"pessoaFisica,omitempty"`
	PessoaJuridica *organizationView `json:"pessoaJuridica,omitempty"`
	Token          string            `json:"token,omitempty"`
	Message        string            `json:"message,omitempty"`
}

func newUserView(u core.User) userView {
	v := userView{
		IDUsuario:   u.ID,
		TipoUsuario: u.Kind,
		Email:       u.Email,
		CriadoEm:    u.CreatedAt,
	}
	if u.Individual != nil {
		v.PessoaFisica = &individualView{
			Nome:     u.Individual.Name,
			CPF:      u.Individual.TaxID,
			DataNasc: u.Individual.BirthDate,
		}
	}
	if u.Organization != nil {
		v.PessoaJuridica = &organizationView{
			CNPJ:        u.Organization.RegistrationID,
			RazaoSocial: u.Organization.LegalName,
		}
	}
	return v
}

type subcategoryView struct {
	IDSubcategoria int64  `json:"idSubcategoria"`
	IDCategoria    int64  `json:"idCategoria"`
	NomeSubcat     string `json:"nomeSubcat"`
}

func newSubcategoryView(s core.Subcategory) subcategoryView {
	return subcategoryView{
		IDSubcategoria: s.ID,
		IDCategoria:    s.CategoryID,
		NomeSubcat:     s.Name,
	}
}

type categoryView struct {
	IDCategoria   int64             `json:"idCategoria"`
	NomeCategoria string            `json:"nomeCategoria"`
	TipoCategoria core.CategoryKind `json:"tipoCategoria"`
	Subcategorias []subcategoryView `json:"subcategorias,omitempty"`
}

func newCategoryView(c core.Category) categoryView {
	v := categoryView{
		IDCategoria:   c.ID,
		NomeCategoria: c.Name,
		TipoCategoria: c.Kind,
	}
	for _, s := range c.Subcategories {
		v.Subcategorias = append(v.Subcategorias, newSubcategoryView(s))
	}
	return v
}

// categoryRef is the trimmed categoria block embedded in ledger responses.
type categoryRef struct {
	IDCategoria   int64             `json:"idCategoria"`
	NomeCategoria string            `json:"nomeCategoria"`
	TipoCategoria core.CategoryKind `json:"tipoCategoria"`
}

// subcategoryRef is the trimmed subcategoria block embedded in ledger
// responses.
type subcategoryRef struct {
	IDSubcategoria int64  `json:"idSubcategoria"`
	NomeSubcat     string `json:"nomeSubcat"`
}
