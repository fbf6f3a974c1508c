package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"ladle/model"
)

type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type Postgres struct {
	db *sql.DB
}

func NewPostgres(info PostgresInfo) (*Postgres, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		info.Host, info.Port, info.User, info.Password, info.Database))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	p := &Postgres{db: db}
	if err := p.migrate(pgMigration); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Postgres) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`
	_, err := p.db.Exec(query)
	if err != nil {
		return err
	}

	// find existing
	rows, err := p.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := p.db.Exec(query); err != nil {
			return err
		}

		// register
		if _, err := p.db.Exec(`
INSERT INTO migration
(query) VALUES ($1)
`, query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}

type PostgresImportRepository struct {
	*Postgres
}

func NewPostgresImportRepository(p *Postgres) *PostgresImportRepository {
	return &PostgresImportRepository{p}
}

// Save upserts the import row and, when a recipe was parsed, replaces its
// recipe and ingredient rows in the same transaction.
func (p *PostgresImportRepository) Save(imp *model.Import) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
INSERT INTO import (id, url, status, error, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, error = EXCLUDED.error`,
		imp.ID, imp.URL, string(imp.Status), imp.Error, imp.CreatedAt); err != nil {
		return err
	}

	if imp.Recipe != nil {
		if _, err := tx.Exec(`DELETE FROM recipe WHERE import_id = $1`, imp.ID); err != nil {
			return err
		}

		r := imp.Recipe
		var recipeID int
		if err := tx.QueryRow(`
INSERT INTO recipe (import_id, name, description, instructions, image_url, cuisine, category,
cooking_time, servings, calories_per_serving, source_url, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`,
			imp.ID, r.Name, r.Description, r.Instructions, r.ImageURL, r.Cuisine, r.Category,
			r.CookingTime, r.Servings, r.CaloriesPerServing, r.SourceURL, r.Source).Scan(&recipeID); err != nil {
			return err
		}

		for i, ing := range r.Ingredients {
			if _, err := tx.Exec(`
INSERT INTO ingredient (recipe_id, position, name, quantity, unit)
VALUES ($1, $2, $3, $4, $5)`,
				recipeID, i, ing.Name, ing.Quantity, ing.Unit); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (p *PostgresImportRepository) FindAll() ([]*model.Import, error) {
	rows, err := p.db.Query(`
SELECT id, url, status, error, created_at
FROM import
ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	imports := []*model.Import{}
	for rows.Next() {
		imp := &model.Import{}
		var status string
		if err := rows.Scan(&imp.ID, &imp.URL, &status, &imp.Error, &imp.CreatedAt); err != nil {
			return nil, err
		}
		imp.Status = model.ImportStatus(status)
		imports = append(imports, imp)
	}

	for _, imp := range imports {
		if imp.Status != model.ImportStatusDone {
			continue
		}
		recipe, err := p.findRecipe(imp.ID)
		if err != nil {
			return nil, err
		}
		imp.Recipe = recipe
	}

	return imports, nil
}

func (p *PostgresImportRepository) FindOne(id uuid.UUID) (*model.Import, error) {
	imp := &model.Import{}
	var status string
	err := p.db.QueryRow(`
SELECT id, url, status, error, created_at
FROM import
WHERE id = $1`, id).Scan(&imp.ID, &imp.URL, &status, &imp.Error, &imp.CreatedAt)
	switch {
	case err == sql.ErrNoRows:
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	imp.Status = model.ImportStatus(status)

	if imp.Status == model.ImportStatusDone {
		recipe, err := p.findRecipe(imp.ID)
		if err != nil {
			return nil, err
		}
		imp.Recipe = recipe
	}

	return imp, nil
}

func (p *PostgresImportRepository) findRecipe(importID uuid.UUID) (*model.ParsedRecipe, error) {
	r := &model.ParsedRecipe{}
	var recipeID int
	err := p.db.QueryRow(`
SELECT id, name, description, instructions, image_url, cuisine, category,
cooking_time, servings, calories_per_serving, source_url, source
FROM recipe
WHERE import_id = $1`, importID).Scan(&recipeID, &r.Name, &r.Description, &r.Instructions,
		&r.ImageURL, &r.Cuisine, &r.Category, &r.CookingTime, &r.Servings,
		&r.CaloriesPerServing, &r.SourceURL, &r.Source)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, err
	}

	rows, err := p.db.Query(`
SELECT name, quantity, unit
FROM ingredient
WHERE recipe_id = $1
ORDER BY position`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ing model.ParsedIngredient
		if err := rows.Scan(&ing.Name, &ing.Quantity, &ing.Unit); err != nil {
			return nil, err
		}
		r.Ingredients = append(r.Ingredients, ing)
	}

	return r, nil
}
