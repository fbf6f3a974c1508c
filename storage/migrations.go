package storage

var pgMigration = []string{
	`CREATE TYPE import_status AS ENUM ('done', 'failed')`,
	`CREATE TABLE import (
id uuid PRIMARY KEY,
url VARCHAR(2048) NOT NULL,
status import_status NOT NULL,
error TEXT NOT NULL DEFAULT '',
created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE recipe (
id SERIAL PRIMARY KEY,
import_id uuid NOT NULL UNIQUE REFERENCES import(id) ON DELETE CASCADE,
name VARCHAR(255) NOT NULL,
description TEXT NOT NULL DEFAULT '',
instructions TEXT NOT NULL DEFAULT '',
image_url VARCHAR(2048) NOT NULL DEFAULT '',
cuisine VARCHAR(255) NOT NULL DEFAULT '',
category VARCHAR(255) NOT NULL DEFAULT '',
cooking_time INTEGER NOT NULL DEFAULT 0,
servings INTEGER NOT NULL DEFAULT 0,
calories_per_serving INTEGER NOT NULL DEFAULT 0,
source_url VARCHAR(2048) NOT NULL DEFAULT '',
source VARCHAR(255) NOT NULL DEFAULT ''
)`,
	`CREATE TABLE ingredient (
id SERIAL PRIMARY KEY,
recipe_id INTEGER NOT NULL REFERENCES recipe(id) ON DELETE CASCADE,
position INTEGER NOT NULL,
name VARCHAR(255) NOT NULL,
quantity VARCHAR(255) NOT NULL DEFAULT '',
unit VARCHAR(255) NOT NULL DEFAULT ''
)`,
}
