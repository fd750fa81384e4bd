package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// RosterRepository implements repository.Roster for PostgreSQL
type RosterRepository struct {
	db *pgxpool.Pool
}

// NewRosterRepository creates a new RosterRepository
func NewRosterRepository(db *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) GetMember(ctx context.Context, userID string) (*domain.Member, error) {
	return getMember(ctx, r.db, userID)
}

func (r *RosterRepository) GetMemberByUsername(ctx context.Context, username string) (*domain.Member, error) {
	return getOne(ctx, r.db, scanMember, domain.ErrUserNotFound, SQLGetMemberByUsername, username)
}

func (r *RosterRepository) ListMembers(ctx context.Context) ([]domain.Member, error) {
	members, err := getMany(ctx, r.db, scanMember, SQLListMembers)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "list members", err)
	}
	return members, nil
}

func (r *RosterRepository) CreateMember(ctx context.Context, m domain.Member) (*domain.Member, error) {
	created, err := scanMember(r.db.QueryRow(ctx, SQLInsertMember, m.UserID, m.Username, string(m.RoleTier), m.IsAdmin))
	if err != nil {
		if isConstraintViolation(err, PgErrorCodeUniqueViolation, "") {
			return nil, fmt.Errorf("%w: %s", domain.ErrMemberAlreadyExists, m.Username)
		}
		return nil, fmt.Errorf(ErrMsgQueryFailed, "create member", mapInfraError(err))
	}
	return created, nil
}

func (r *RosterRepository) UpdateMember(ctx context.Context, m domain.Member) error {
	tag, err := r.db.Exec(ctx, SQLUpdateMember, m.UserID, m.Username, string(m.RoleTier), m.IsAdmin)
	if err != nil {
		if isConstraintViolation(err, PgErrorCodeUniqueViolation, ConstraintMembersUsername) {
			return fmt.Errorf("%w: %s", domain.ErrMemberAlreadyExists, m.Username)
		}
		return fmt.Errorf(ErrMsgQueryFailed, "update member", mapInfraError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *RosterRepository) GetCharacter(ctx context.Context, id int64) (*domain.Character, error) {
	return getCharacter(ctx, r.db, id)
}

func (r *RosterRepository) ListCharacters(ctx context.Context, userID string) ([]domain.Character, error) {
	chars, err := getMany(ctx, r.db, scanCharacter, SQLListCharacters, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "list characters", err)
	}
	return chars, nil
}

func (r *RosterRepository) CreateCharacter(ctx context.Context, c domain.Character) (*domain.Character, error) {
	created, err := scanCharacter(r.db.QueryRow(ctx, SQLInsertCharacter, c.UserID, c.Name, c.World, c.Vocation, c.Level))
	if err != nil {
		switch {
		case isConstraintViolation(err, PgErrorCodeForeignKeyViolation, ""):
			return nil, domain.ErrUserNotFound
		case isConstraintViolation(err, PgErrorCodeUniqueViolation, ConstraintCharactersName):
			return nil, fmt.Errorf("%w: character %s is already registered", domain.ErrInvalidInput, c.Name)
		}
		return nil, fmt.Errorf(ErrMsgQueryFailed, "create character", mapInfraError(err))
	}
	return created, nil
}

func getMember(ctx context.Context, q querier, userID string) (*domain.Member, error) {
	return getOne(ctx, q, scanMember, domain.ErrUserNotFound, SQLGetMember, userID)
}

func getCharacter(ctx context.Context, q querier, id int64) (*domain.Character, error) {
	return getOne(ctx, q, scanCharacter, domain.ErrCharacterNotFound, SQLGetCharacter, id)
}
