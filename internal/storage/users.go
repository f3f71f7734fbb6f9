package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintechapi/internal/core"
	applog "fintechapi/internal/log"
)

// CreateUser inserts the user and its profile as one unit.
func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO usuario (tipo_usuario, email, senha_hash, criado_em) VALUES (?, ?, ?, ?)`,
			string(u.Kind), u.Email, u.PasswordHash, formatTime(u.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert user: %w", mapConstraintErr(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		u.ID = id

		switch u.Kind {
		case core.AccountIndividual:
			var birth any
			if u.Individual.BirthDate != nil {
				birth = u.Individual.BirthDate.String()
			}
			res, err := tx.ExecContext(ctx,
				`INSERT INTO pessoa_fisica (id_usuario, nome, cpf, data_nasc) VALUES (?, ?, ?, ?)`,
				id, u.Individual.Name, u.Individual.TaxID, birth)
			if err != nil {
				return fmt.Errorf("insert individual profile: %w", mapConstraintErr(err))
			}
			pid, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("profile id: %w", err)
			}
			u.Individual.ID = pid
			u.Individual.UserID = id
		case core.AccountOrganization:
			res, err := tx.ExecContext(ctx,
				`INSERT INTO pessoa_juridica (id_usuario, cnpj, razao_social) VALUES (?, ?, ?)`,
				id, u.Organization.RegistrationID, u.Organization.LegalName)
			if err != nil {
				return fmt.Errorf("insert organization profile: %w", mapConstraintErr(err))
			}
			pid, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("profile id: %w", err)
			}
			u.Organization.ID = pid
			u.Organization.UserID = id
		}
		return nil
	})
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User created",
		applog.FieldUserID, u.ID,
		applog.FieldAccountKind, string(u.Kind),
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpCreate)
	return u, nil
}

// GetUser loads a user and its profile by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (core.User, error) {
	return r.getUser(ctx, `SELECT id_usuario, tipo_usuario, email, senha_hash, criado_em FROM usuario WHERE id_usuario = ?`, id)
}

// GetUserByEmail loads a user and its profile by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.getUser(ctx, `SELECT id_usuario, tipo_usuario, email, senha_hash, criado_em FROM usuario WHERE email = ?`, email)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (core.User, error) {
	var (
		u       core.User
		kind    string
		created string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &kind, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFoundf("usuário não encontrado")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("query user: %w", err)
	}
	u.Kind = core.AccountKind(kind)
	u.CreatedAt = parseTime(created)

	if err := r.loadProfile(ctx, &u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// loadProfile attaches the profile matching the user's kind. A missing
// profile row is tolerated so projections can omit the optional block.
func (r *Repository) loadProfile(ctx context.Context, u *core.User) error {
	switch u.Kind {
	case core.AccountIndividual:
		var (
			p     core.IndividualProfile
			birth sql.NullString
		)
		err := r.db.QueryRowContext(ctx,
			`SELECT id_pf, id_usuario, nome, cpf, data_nasc FROM pessoa_fisica WHERE id_usuario = ?`,
			u.ID).Scan(&p.ID, &p.UserID, &p.Name, &p.TaxID, &birth)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("query individual profile: %w", err)
		}
		if birth.Valid {
			if d, err := core.ParseDate(birth.String); err == nil {
				p.BirthDate = &d
			}
		}
		u.Individual = &p
	case core.AccountOrganization:
		var p core.OrganizationProfile
		err := r.db.QueryRowContext(ctx,
			`SELECT id_pj, id_usuario, cnpj, razao_social FROM pessoa_juridica WHERE id_usuario = ?`,
			u.ID).Scan(&p.ID, &p.UserID, &p.RegistrationID, &p.LegalName)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("query organization profile: %w", err)
		}
		u.Organization = &p
	}
	return nil
}

// ListUsers returns every user with its profile attached.
func (r *Repository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id_usuario, tipo_usuario, email, senha_hash, criado_em FROM usuario ORDER BY id_usuario`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var (
			u       core.User
			kind    string
			created string
		)
		if err := rows.Scan(&u.ID, &kind, &u.Email, &u.PasswordHash, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Kind = core.AccountKind(kind)
		u.CreatedAt = parseTime(created)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	for i := range users {
		if err := r.loadProfile(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// EmailExists reports whether any user already has the given email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM usuario WHERE email = ?)`, email)
}

// TaxIDExists reports whether any individual profile already has the CPF.
func (r *Repository) TaxIDExists(ctx context.Context, taxID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM pessoa_fisica WHERE cpf = ?)`, taxID)
}

// RegistrationIDExists reports whether any organization profile already has the CNPJ.
func (r *Repository) RegistrationIDExists(ctx context.Context, registrationID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM pessoa_juridica WHERE cnpj = ?)`, registrationID)
}

func (r *Repository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return found, nil
}

// UpdateUser persists the user row and upserts its profile in one unit.
func (r *Repository) UpdateUser(ctx context.Context, u core.User) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE usuario SET email = ?, senha_hash = ? WHERE id_usuario = ?`,
			u.Email, u.PasswordHash, u.ID)
		if err != nil {
			return fmt.Errorf("update user: %w", mapConstraintErr(err))
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return core.NotFoundf("usuário não encontrado com ID: %d", u.ID)
		}

		if u.Kind == core.AccountIndividual && u.Individual != nil {
			var birth any
			if u.Individual.BirthDate != nil {
				birth = u.Individual.BirthDate.String()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO pessoa_fisica (id_usuario, nome, cpf, data_nasc) VALUES (?, ?, ?, ?)
				 ON CONFLICT (id_usuario) DO UPDATE SET nome = excluded.nome, cpf = excluded.cpf, data_nasc = excluded.data_nasc`,
				u.ID, u.Individual.Name, u.Individual.TaxID, birth)
			if err != nil {
				return fmt.Errorf("upsert individual profile: %w", mapConstraintErr(err))
			}
		}
		if u.Kind == core.AccountOrganization && u.Organization != nil {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO pessoa_juridica (id_usuario, cnpj, razao_social) VALUES (?, ?, ?)
				 ON CONFLICT (id_usuario) DO UPDATE SET cnpj = excluded.cnpj, razao_social = excluded.razao_social`,
				u.ID, u.Organization.RegistrationID, u.Organization.LegalName)
			if err != nil {
				return fmt.Errorf("upsert organization profile: %w", mapConstraintErr(err))
			}
		}
		return nil
	})
}

// DeleteUser removes a user; profile and ledger rows cascade.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM usuario WHERE id_usuario = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NotFoundf("usuário não encontrado com ID: %d", id)
	}

	slog.InfoContext(ctx, "User deleted",
		applog.FieldUserID, id,
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

// UserExists reports whether a user row exists.
func (r *Repository) UserExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM usuario WHERE id_usuario = ?)`, id)
}
