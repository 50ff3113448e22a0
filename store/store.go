package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockpot"
)

const dateLayout = "2006-01-02"

// Store implements persistence using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateProfile(ctx context.Context, p stockpot.Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (id, username, avatar)
		VALUES ($1, $2, $3)`,
		p.ID, p.Username, nullable(p.Avatar),
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*stockpot.Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, COALESCE(avatar, '')
		FROM profiles WHERE id = $1`, id)

	var p stockpot.Profile
	if err := row.Scan(&p.ID, &p.Username, &p.Avatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get profile %s: %w", id, stockpot.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

type itemRow struct {
	name       string
	dateBought string
	price      float64
	expiration *string
	storageLoc *string
}

// buildItemRows shapes items for insertion. Items without a name are
// dropped and a missing purchase date defaults to today.
func buildItemRows(items []stockpot.Item, today string) []itemRow {
	rows := make([]itemRow, 0, len(items))
	for _, item := range items {
		if item.Name == "" {
			continue
		}

		dateBought := item.DateBought
		if dateBought == "" {
			dateBought = today
		}

		expiration := item.EstimatedExpiration
		if expiration == "" {
			expiration = item.ExpiryDate
		}

		rows = append(rows, itemRow{
			name:       item.Name,
			dateBought: dateBought,
			price:      item.Price,
			expiration: nullable(expiration),
			storageLoc: nullable(item.StorageLocation),
		})
	}
	return rows
}

// InsertItems persists the given items for a user. Returns the number
// of rows inserted.
func (s *Store) InsertItems(ctx context.Context, userUUID string, items []stockpot.Item) (int, error) {
	rows := buildItemRows(items, time.Now().Format(dateLayout))

	inserted := 0
	for _, row := range rows {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO items (user_uuid, name, date_bought, price, estimated_expiration, storage_location)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			userUUID, row.name, row.dateBought, row.price, row.expiration, row.storageLoc,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert item %q: %w", row.name, err)
		}
		inserted++
	}
	return inserted, nil
}

func (s *Store) ListItems(ctx context.Context, userUUID string) ([]stockpot.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_uuid, name, date_bought, price, estimated_expiration, storage_location
		FROM items WHERE user_uuid = $1 ORDER BY date_bought DESC, id DESC`, userUUID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []stockpot.Item{}
	for rows.Next() {
		var (
			item       stockpot.Item
			dateBought time.Time
			expiration *time.Time
			location   *string
		)
		if err := rows.Scan(&item.ID, &item.UserUUID, &item.Name, &dateBought, &item.Price, &expiration, &location); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.DateBought = dateBought.Format(dateLayout)
		if expiration != nil {
			item.EstimatedExpiration = expiration.Format(dateLayout)
		}
		if location != nil {
			item.StorageLocation = *location
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveRecipe stores a recipe with its ingredients and numbered steps in
// a single transaction. The recipe's ID is set on success.
func (s *Store) SaveRecipe(ctx context.Context, userUUID string, r *stockpot.Recipe) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO recipes (user_uuid, title, cook_time, difficulty, servings, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		userUUID, r.Title, r.CookTime, r.Difficulty, r.Servings, nullable(r.URL),
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}

	for _, ingredient := range r.Ingredients {
		if _, err := tx.Exec(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient)
			VALUES ($1, $2)`, r.ID, ingredient); err != nil {
			return fmt.Errorf("insert ingredient: %w", err)
		}
	}

	for i, step := range r.Steps {
		if _, err := tx.Exec(ctx, `
			INSERT INTO recipe_steps (recipe_id, step_number, instruction)
			VALUES ($1, $2, $3)`, r.ID, i+1, step); err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListRecipes returns a user's recipes with ingredients and steps in
// step order.
func (s *Store) ListRecipes(ctx context.Context, userUUID string) ([]stockpot.Recipe, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, cook_time, difficulty, servings, COALESCE(url, '')
		FROM recipes WHERE user_uuid = $1 ORDER BY created_at DESC`, userUUID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []stockpot.Recipe{}
	for rows.Next() {
		var r stockpot.Recipe
		if err := rows.Scan(&r.ID, &r.Title, &r.CookTime, &r.Difficulty, &r.Servings, &r.URL); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		if err := s.loadRecipeParts(ctx, &recipes[i]); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (s *Store) loadRecipeParts(ctx context.Context, r *stockpot.Recipe) error {
	ingRows, err := s.pool.Query(ctx, `
		SELECT ingredient FROM recipe_ingredients
		WHERE recipe_id = $1 ORDER BY id`, r.ID)
	if err != nil {
		return fmt.Errorf("list ingredients: %w", err)
	}
	defer ingRows.Close()

	r.Ingredients = []string{}
	for ingRows.Next() {
		var ingredient string
		if err := ingRows.Scan(&ingredient); err != nil {
			return fmt.Errorf("scan ingredient: %w", err)
		}
		r.Ingredients = append(r.Ingredients, ingredient)
	}
	if err := ingRows.Err(); err != nil {
		return err
	}

	stepRows, err := s.pool.Query(ctx, `
		SELECT instruction FROM recipe_steps
		WHERE recipe_id = $1 ORDER BY step_number`, r.ID)
	if err != nil {
		return fmt.Errorf("list steps: %w", err)
	}
	defer stepRows.Close()

	r.Steps = []string{}
	for stepRows.Next() {
		var instruction string
		if err := stepRows.Scan(&instruction); err != nil {
			return fmt.Errorf("scan step: %w", err)
		}
		r.Steps = append(r.Steps, instruction)
	}
	return stepRows.Err()
}

// nullable maps an empty string to NULL so optional text columns stay
// NULL instead of storing empty strings.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
