package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/yourusername/membership-api/internal/domain/entity"
)

// Локальный инструмент починки БД: снимает dirty-флаг миграций и при
// необходимости возвращает в очередь события outbox, исчерпавшие попытки.

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	forceVersion := flag.Int("force-version", -1, "принудительно выставить версию миграций (снимает dirty-флаг)")
	requeueAbandoned := flag.Bool("requeue-abandoned", false, "сбросить retry_count у событий outbox, исчерпавших попытки")
	maxRetry := flag.Int("max-retry", 10, "порог попыток, после которого событие считается заброшенным")
	flag.Parse()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DATABASE_HOST", "localhost"),
		envOr("DATABASE_PORT", "5432"),
		envOr("DATABASE_USER", "postgres"),
		envOr("DATABASE_PASSWORD", "123456"),
		envOr("DATABASE_DBNAME", "membership_db"),
		envOr("DATABASE_SSLMODE", "disable"),
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	if *forceVersion >= 0 {
		driver, err := postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			log.Fatal(err)
		}

		m, err := migrate.NewWithDatabaseInstance(
			"file://migrations",
			"postgres",
			driver,
		)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Forcing migration version to %d to clean dirty state...\n", *forceVersion)
		if err := m.Force(*forceVersion); err != nil {
			log.Fatalf("Failed to force version: %v", err)
		}
		fmt.Println("Success! Dirty state cleaned. You can now run the app normally.")
	}

	if *requeueAbandoned {
		affected, err := requeueAbandonedEvents(db, *maxRetry)
		if err != nil {
			log.Fatalf("Failed to requeue abandoned outbox events: %v", err)
		}
		fmt.Printf("Requeued %d abandoned outbox events.\n", affected)
	}

	if *forceVersion < 0 && !*requeueAbandoned {
		fmt.Println("Nothing to do: pass -force-version and/or -requeue-abandoned.")
	}
}

// requeueAbandonedEvents возвращает в очередь события, исчерпавшие попытки,
// и фиксирует вмешательство в журнале аудита.
func requeueAbandonedEvents(db *sql.DB, maxRetry int) (int64, error) {
	// Сброс retry_count возвращает события в выборку воркера дренажа.
	// last_error оставляем для диагностики: следующий успех его затрет.
	res, err := db.Exec(
		`UPDATE groupware_sync_outbox
		 SET retry_count = 0
		 WHERE processed_at IS NULL AND retry_count >= $1`,
		maxRetry,
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка сброса retry_count: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return 0, nil
	}

	desc := fmt.Sprintf("%d abandoned outbox events requeued (%s)", affected, entity.TriggerManualSync)
	_, err = db.Exec(
		`INSERT INTO audit_log_entries (id, action, entity_type, entity_id, description, occurred_at, actor_name)
		 VALUES ($1, $2, 'Outbox', 0, $3, NOW(), $4)`,
		uuid.New().String(), string(entity.AuditOutboxEventRequeued), desc, "Admin: fix-db",
	)
	if err != nil {
		return affected, fmt.Errorf("ошибка записи аудита: %w", err)
	}
	return affected, nil
}
