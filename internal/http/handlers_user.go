package http

import (
	"net/http"

	"fintechapi/internal/core"
	"fintechapi/internal/services"
)

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrInvalidCredentials)
		return
	}

	user, err := s.users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

type updateUserRequest struct {
	Email          string                      `json:"email"`
	Senha          string                      `json:"senha"`
	PessoaFisica   *profileIndividualRequest   `json:"pessoaFisica"`
	PessoaJuridica *profileOrganizationRequest `json:"pessoaJuridica"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.UpdateInput{
		ID:       id,
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

	user, err := s.users.Update(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
