package database

import (
	"fmt"

	"gorm.io/gorm"

	"schulgeld-backend/models"
)

// MigrateTenantSchema applies (idempotent) schema migrations for a single school schema.
// It pins search_path to the schema and performs:
// - AutoMigrate (tables/columns)
// - Money column types (NUMERIC(12,2))
// - Indexes (versions, payments, assignments, class links)
// - Foreign keys between fee tables
// - Basic CHECK constraints
// - Idempotency keys table + unique index
func MigrateTenantSchema(schema string) error {
	if schema == "" {
		return fmt.Errorf("schema name is empty")
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		// Pin the school schema for this transaction
		if err := tx.Exec(`SET search_path = "` + schema + `", public`).Error; err != nil {
			return fmt.Errorf("set search_path failed: %w", err)
		}

		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.Class{},
			&models.FeeType{},
			&models.FeeTypeClass{},
			&models.Student{},
			&models.StudentFeeType{},
			&models.Payment{},
			&models.StudentFeeVersion{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("tenant automigrate failed: %w", err)
		}

		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE fee_types          ALTER COLUMN default_amount  TYPE numeric(12,2)`,
			`ALTER TABLE students           ALTER COLUMN total_fees      TYPE numeric(12,2)`,
			`ALTER TABLE student_fee_types  ALTER COLUMN assigned_amount TYPE numeric(12,2)`,
			`ALTER TABLE student_fee_types  ALTER COLUMN discount        TYPE numeric(12,2)`,
			`ALTER TABLE payments           ALTER COLUMN amount          TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_student_fee_versions_student_version ON student_fee_versions (student_id, version_no)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_fee_type_classes_type_class ON fee_type_classes (fee_type_id, class_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_classes_name_section ON classes (name, section)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_receipt_number ON payments (receipt_number)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_student_paid_at ON payments (student_id, paid_at)`,
			`CREATE INDEX IF NOT EXISTS idx_student_fee_types_student ON student_fee_types (student_id)`,
			`CREATE INDEX IF NOT EXISTS idx_student_fee_types_fee_type ON student_fee_types (fee_type_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Foreign keys between fee tables (RESTRICT keeps history intact) ---
		fks := []string{
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'student_fee_types'::regclass
					  AND conname  = 'fk_student_fee_types_fee_type'
				) THEN
					ALTER TABLE student_fee_types
					ADD CONSTRAINT fk_student_fee_types_fee_type
					FOREIGN KEY (fee_type_id)
					REFERENCES fee_types(id)
					ON UPDATE RESTRICT
					ON DELETE RESTRICT;
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'student_fee_types'::regclass
					  AND conname  = 'fk_student_fee_types_student'
				) THEN
					ALTER TABLE student_fee_types
					ADD CONSTRAINT fk_student_fee_types_student
					FOREIGN KEY (student_id)
					REFERENCES students(id)
					ON DELETE CASCADE;
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payments'::regclass
					  AND conname  = 'fk_payments_student'
				) THEN
					ALTER TABLE payments
					ADD CONSTRAINT fk_payments_student
					FOREIGN KEY (student_id)
					REFERENCES students(id)
					ON UPDATE RESTRICT
					ON DELETE RESTRICT;
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'fee_type_classes'::regclass
					  AND conname  = 'fk_fee_type_classes_fee_type'
				) THEN
					ALTER TABLE fee_type_classes
					ADD CONSTRAINT fk_fee_type_classes_fee_type
					FOREIGN KEY (fee_type_id)
					REFERENCES fee_types(id)
					ON DELETE CASCADE;
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'fee_type_classes'::regclass
					  AND conname  = 'fk_fee_type_classes_class'
				) THEN
					ALTER TABLE fee_type_classes
					ADD CONSTRAINT fk_fee_type_classes_class
					FOREIGN KEY (class_id)
					REFERENCES classes(id)
					ON UPDATE RESTRICT
					ON DELETE RESTRICT;
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'students'::regclass
					  AND conname  = 'fk_students_class'
				) THEN
					ALTER TABLE students
					ADD CONSTRAINT fk_students_class
					FOREIGN KEY (class_id)
					REFERENCES classes(id)
					ON UPDATE RESTRICT
					ON DELETE RESTRICT;
				END IF;
			END $$;`,
		}
		for _, stmt := range fks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("foreign key migration failed: %w", err)
			}
		}

		// --- NOT NULL backstops (idempotent) ---
		notNulls := []string{
			`ALTER TABLE student_fee_types ALTER COLUMN fee_type_id SET NOT NULL`,
			`ALTER TABLE student_fee_types ALTER COLUMN student_id  SET NOT NULL`,
			`ALTER TABLE students          ALTER COLUMN class_id    SET NOT NULL`,
		}
		for _, stmt := range notNulls {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("set NOT NULL failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Fee type defaults cannot be negative
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'fee_types'::regclass
					  AND conname  = 'chk_fee_types_default_amount_nonneg'
				) THEN
					ALTER TABLE fee_types
					ADD CONSTRAINT chk_fee_types_default_amount_nonneg
					CHECK (default_amount >= 0);
				END IF;
			END $$;`,
			// Payments must carry money
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payments'::regclass
					  AND conname  = 'chk_payments_amount_positive'
				) THEN
					ALTER TABLE payments
					ADD CONSTRAINT chk_payments_amount_positive
					CHECK (amount > 0);
				END IF;
			END $$;`,
			// Overrides are NULL (use the default) or non-negative
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'student_fee_types'::regclass
					  AND conname  = 'chk_student_fee_types_amount_nonneg'
				) THEN
					ALTER TABLE student_fee_types
					ADD CONSTRAINT chk_student_fee_types_amount_nonneg
					CHECK (assigned_amount IS NULL OR assigned_amount >= 0);
				END IF;
			END $$;`,
			// Discounts are non-negative (they may still exceed the amount)
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'student_fee_types'::regclass
					  AND conname  = 'chk_student_fee_types_discount_nonneg'
				) THEN
					ALTER TABLE student_fee_types
					ADD CONSTRAINT chk_student_fee_types_discount_nonneg
					CHECK (discount >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
