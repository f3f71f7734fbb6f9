package http

import (
	"log/slog"
	"net/http"
	"strings"

	"fintechapi/internal/config"
	"fintechapi/internal/core"
	applog "fintechapi/internal/log"
	"fintechapi/internal/services"
)

type profileIndividualRequest struct {
	Nome     string     `json:"nome"`
	CPF      string     `json:"cpf"`
	DataNasc *core.Date `json:"dataNasc"`
}

type profileOrganizationRequest struct {
	CNPJ        string `json:"cnpj"`
	RazaoSocial string `json:"razaoSocial"`
}

type registerRequest struct {
	TipoUsuario    string                      `json:"tipoUsuario"`
	Email          string                      `json:"email"`
	Senha          string                      `json:"senha"`
	PessoaFisica   *profileIndividualRequest   `json:"pessoaFisica"`
	PessoaJuridica *profileOrganizationRequest `json:"pessoaJuridica"`
}

func (req registerRequest) toInput() services.RegisterInput {
	in := services.RegisterInput{
		Kind:     core.AccountKind(req.TipoUsuario),
		Email:    req.Email,
		Password: req.Senha,
	}
	if req.PessoaFisica != nil {
		in.Individual = &core.IndividualProfile{
			Name:      req.PessoaFisica.Nome,
			TaxID:     req.PessoaFisica.CPF,
			BirthDate: req.PessoaFisica.DataNasc,
		}
	}
	if req.PessoaJuridica != nil {
		in.Organization = &core.OrganizationProfile{
			RegistrationID: req.PessoaJuridica.CNPJ,
			LegalName:      req.PessoaJuridica.RazaoSocial,
		}
	}
	return in
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserView(user))
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Email, req.Senha)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := newUserView(user)
	view.Message = "Login realizado com sucesso"
	if s.cfg.AuthMode == config.AuthModeToken {
		sess := s.sessions.Create(user.ID, user.Email, user.Kind)
		view.Token = sess.Token
	}

	slog.InfoContext(r.Context(), "User logged in",
		applog.FieldUserID, user.ID,
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldOperation, applog.OpLogin)
	writeJSON(w, http.StatusOK, view)
}

// handleLogout revokes the presented bearer token. In basic mode there is
// no server-side session to drop, so the call is a no-op.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AuthMode == config.AuthModeToken {
		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			s.sessions.Revoke(strings.TrimSpace(token))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
