// Package sqlite is a profiles.Store backed by the pure-Go modernc.org/sqlite
// driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dekarrin/constrain/internal/errs"
	"github.com/dekarrin/constrain/internal/grammar"
	"github.com/dekarrin/constrain/internal/profiles"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

type store struct {
	db       *sql.DB
	profiles *ProfilesDB
	sessions *SessionsDB
}

// NewDatastore opens (creating if needed) a SQLite database at the given
// file path and returns a profiles.Store backed by it.
func NewDatastore(file string) (profiles.Store, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st := &store{db: db}
	st.profiles = &ProfilesDB{db: db}
	if err := st.profiles.init(); err != nil {
		return nil, err
	}
	st.sessions = &SessionsDB{db: db}
	if err := st.sessions.init(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *store) Profiles() profiles.ProfileRepository { return s.profiles }
func (s *store) Sessions() profiles.SessionRepository { return s.sessions }
func (s *store) Close() error                         { return s.db.Close() }

// ProfilesDB is a SQLite-backed profiles.ProfileRepository.
type ProfilesDB struct {
	db *sql.DB
}

func (repo *ProfilesDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		owner TEXT NOT NULL,
		created INTEGER NOT NULL,
		bnf_source TEXT NOT NULL,
		vocab_raw TEXT NOT NULL,
		start_nonterminal TEXT NOT NULL,
		options TEXT NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *ProfilesDB) Create(ctx context.Context, p profiles.Profile) (profiles.Profile, error) {
	newID, err := uuid.NewRandom()
	if err != nil {
		return profiles.Profile{}, errs.New("could not generate profile ID", err)
	}
	p.ID = newID
	p.Created = time.Now()

	encOpts := base64.StdEncoding.EncodeToString(rezi.EncBinary(p.Options))
	encVocab := base64.StdEncoding.EncodeToString(p.VocabRaw)

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, owner, created, bnf_source, vocab_raw, start_nonterminal, options) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.Name, p.Owner, p.Created.Unix(), p.BNFSource, encVocab, p.Start, encOpts,
	)
	if err != nil {
		return profiles.Profile{}, wrapDBError(err)
	}
	return p, nil
}

func (repo *ProfilesDB) scanRow(row *sql.Row) (profiles.Profile, error) {
	var p profiles.Profile
	var id string
	var created int64
	var encVocab string
	var encOpts string

	err := row.Scan(&id, &p.Name, &p.Owner, &created, &p.BNFSource, &encVocab, &p.Start, &encOpts)
	if err != nil {
		return profiles.Profile{}, wrapDBError(err)
	}

	p.ID, err = uuid.Parse(id)
	if err != nil {
		return profiles.Profile{}, errs.New(fmt.Sprintf("stored profile UUID %q is invalid", id), err)
	}
	p.Created = time.Unix(created, 0)

	p.VocabRaw, err = base64.StdEncoding.DecodeString(encVocab)
	if err != nil {
		return profiles.Profile{}, errs.New("decode stored vocabulary bytes", err)
	}

	optsData, err := base64.StdEncoding.DecodeString(encOpts)
	if err != nil {
		return profiles.Profile{}, errs.New("decode stored engine options", err)
	}
	var opts grammar.EngineOptions
	if _, err := rezi.DecBinary(optsData, &opts); err != nil {
		return profiles.Profile{}, errs.New("REZI decode engine options", err)
	}
	p.Options = opts

	return p, nil
}

func (repo *ProfilesDB) GetByID(ctx context.Context, id uuid.UUID) (profiles.Profile, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, name, owner, created, bnf_source, vocab_raw, start_nonterminal, options FROM profiles WHERE id = ?;`,
		id.String(),
	)
	return repo.scanRow(row)
}

func (repo *ProfilesDB) query(ctx context.Context, query string, args ...interface{}) ([]profiles.Profile, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []profiles.Profile
	for rows.Next() {
		var p profiles.Profile
		var id string
		var created int64
		var encVocab string
		var encOpts string

		if err := rows.Scan(&id, &p.Name, &p.Owner, &created, &p.BNFSource, &encVocab, &p.Start, &encOpts); err != nil {
			return nil, wrapDBError(err)
		}

		p.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, errs.New(fmt.Sprintf("stored profile UUID %q is invalid", id), err)
		}
		p.Created = time.Unix(created, 0)
		p.VocabRaw, err = base64.StdEncoding.DecodeString(encVocab)
		if err != nil {
			return nil, errs.New("decode stored vocabulary bytes", err)
		}
		optsData, err := base64.StdEncoding.DecodeString(encOpts)
		if err != nil {
			return nil, errs.New("decode stored engine options", err)
		}
		var opts grammar.EngineOptions
		if _, err := rezi.DecBinary(optsData, &opts); err != nil {
			return nil, errs.New("REZI decode engine options", err)
		}
		p.Options = opts

		all = append(all, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	return all, nil
}

func (repo *ProfilesDB) GetAllByOwner(ctx context.Context, owner string) ([]profiles.Profile, error) {
	return repo.query(ctx, `SELECT id, name, owner, created, bnf_source, vocab_raw, start_nonterminal, options FROM profiles WHERE owner = ?;`, owner)
}

func (repo *ProfilesDB) GetAll(ctx context.Context) ([]profiles.Profile, error) {
	return repo.query(ctx, `SELECT id, name, owner, created, bnf_source, vocab_raw, start_nonterminal, options FROM profiles;`)
}

func (repo *ProfilesDB) Delete(ctx context.Context, id uuid.UUID) (profiles.Profile, error) {
	cur, err := repo.GetByID(ctx, id)
	if err != nil {
		return cur, err
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id.String())
	if err != nil {
		return cur, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return cur, wrapDBError(err)
	}
	if rowsAff < 1 {
		return cur, errs.New("no profile with that ID", errs.ErrNotFound)
	}
	return cur, nil
}

func (repo *ProfilesDB) Close() error { return repo.db.Close() }

// SessionsDB is a SQLite-backed profiles.SessionRepository.
type SessionsDB struct {
	db *sql.DB
}

func (repo *SessionsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT NOT NULL PRIMARY KEY,
		profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE ON UPDATE CASCADE,
		created INTEGER NOT NULL,
		last_active INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *SessionsDB) Create(ctx context.Context, s profiles.Session) (profiles.Session, error) {
	newID, err := uuid.NewRandom()
	if err != nil {
		return profiles.Session{}, errs.New("could not generate session ID", err)
	}
	s.ID = newID
	now := time.Now()
	s.Created = now
	s.LastActive = now

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO sessions (id, profile_id, created, last_active) VALUES (?, ?, ?, ?)`,
		s.ID.String(), s.ProfileID.String(), s.Created.Unix(), s.LastActive.Unix(),
	)
	if err != nil {
		return profiles.Session{}, wrapDBError(err)
	}
	return s, nil
}

func scanSession(row *sql.Row) (profiles.Session, error) {
	var s profiles.Session
	var id, profileID string
	var created, lastActive int64

	err := row.Scan(&id, &profileID, &created, &lastActive)
	if err != nil {
		return profiles.Session{}, wrapDBError(err)
	}
	s.ID, err = uuid.Parse(id)
	if err != nil {
		return profiles.Session{}, errs.New(fmt.Sprintf("stored session UUID %q is invalid", id), err)
	}
	s.ProfileID, err = uuid.Parse(profileID)
	if err != nil {
		return profiles.Session{}, errs.New(fmt.Sprintf("stored profile UUID %q is invalid", profileID), err)
	}
	s.Created = time.Unix(created, 0)
	s.LastActive = time.Unix(lastActive, 0)
	return s, nil
}

func (repo *SessionsDB) GetByID(ctx context.Context, id uuid.UUID) (profiles.Session, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, profile_id, created, last_active FROM sessions WHERE id = ?;`, id.String())
	return scanSession(row)
}

func (repo *SessionsDB) GetAllByProfile(ctx context.Context, profileID uuid.UUID) ([]profiles.Session, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, profile_id, created, last_active FROM sessions WHERE profile_id = ?;`, profileID.String())
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []profiles.Session
	for rows.Next() {
		var s profiles.Session
		var id, pid string
		var created, lastActive int64
		if err := rows.Scan(&id, &pid, &created, &lastActive); err != nil {
			return nil, wrapDBError(err)
		}
		s.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, errs.New(fmt.Sprintf("stored session UUID %q is invalid", id), err)
		}
		s.ProfileID, err = uuid.Parse(pid)
		if err != nil {
			return nil, errs.New(fmt.Sprintf("stored profile UUID %q is invalid", pid), err)
		}
		s.Created = time.Unix(created, 0)
		s.LastActive = time.Unix(lastActive, 0)
		all = append(all, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	return all, nil
}

func (repo *SessionsDB) Touch(ctx context.Context, id uuid.UUID, lastActive time.Time) (profiles.Session, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE sessions SET last_active = ? WHERE id = ?;`, lastActive.Unix(), id.String())
	if err != nil {
		return profiles.Session{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return profiles.Session{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return profiles.Session{}, errs.New("no session with that ID", errs.ErrNotFound)
	}
	return repo.GetByID(ctx, id)
}

func (repo *SessionsDB) Delete(ctx context.Context, id uuid.UUID) (profiles.Session, error) {
	cur, err := repo.GetByID(ctx, id)
	if err != nil {
		return cur, err
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String())
	if err != nil {
		return cur, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return cur, wrapDBError(err)
	}
	if rowsAff < 1 {
		return cur, errs.New("no session with that ID", errs.ErrNotFound)
	}
	return cur, nil
}

func (repo *SessionsDB) Close() error { return repo.db.Close() }

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return errs.New("constraint violated", errs.ErrAlreadyExists)
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return errs.New("not found", errs.ErrNotFound)
	}
	return err
}
