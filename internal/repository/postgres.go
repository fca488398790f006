package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/cantina-gateway/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore хранит отображение RM -> запись адреса в PostgreSQL.
// В отличие от файлового хранилища, Save выполняется в транзакции,
// поэтому конкурентные записи не теряют данные молча.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore создаёт хранилище и инициализирует схему БД через миграции.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Ошибки контекста не ретраим
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// Конкурентные Save конфликтуют на уникальном ключе либо
			// упираются в сериализацию — и то и другое можно повторить.
			if pgErr.Code == pgerrcode.SerializationFailure ||
				pgErr.Code == pgerrcode.DeadlockDetected ||
				pgErr.Code == pgerrcode.UniqueViolation {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Load читает всё отображение из таблицы customers.
// Строка с NULL-адресом соответствует известному, но незарегистрированному RM.
func (s *PostgresStore) Load(ctx context.Context) (map[string]*model.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT rm, cep, rua, bairro, cidade, estado, numero, nome FROM customers`,
	)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	records := make(map[string]*model.Record)

	for rows.Next() {
		var (
			rm     string
			cep    *string
			rua    *string
			bairro *string
			cidade *string
			estado *string
			numero *int
			nome   *string
		)
		if err := rows.Scan(&rm, &cep, &rua, &bairro, &cidade, &estado, &numero, &nome); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}

		if cep == nil {
			records[rm] = nil
			continue
		}

		rec := &model.Record{
			Address: model.Address{CEP: *cep},
		}
		if rua != nil {
			rec.Rua = *rua
		}
		if bairro != nil {
			rec.Bairro = *bairro
		}
		if cidade != nil {
			rec.Cidade = *cidade
		}
		if estado != nil {
			rec.Estado = *estado
		}
		if numero != nil {
			rec.Numero = *numero
		}
		if nome != nil {
			rec.Nome = *nome
		}
		records[rm] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return records, nil
}

// Save записывает всё отображение в таблицу customers в одной транзакции.
func (s *PostgresStore) Save(ctx context.Context, records map[string]*model.Record) error {
	return s.withRetry(ctx, func() error {
		tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `DELETE FROM customers`); err != nil {
			return fmt.Errorf("clear customers: %w", err)
		}

		for rm, rec := range records {
			if rec == nil {
				if _, err := tx.Exec(ctx,
					`INSERT INTO customers (rm) VALUES ($1)`, rm,
				); err != nil {
					return fmt.Errorf("insert customer %s: %w", rm, err)
				}
				continue
			}

			if _, err := tx.Exec(ctx,
				`INSERT INTO customers (rm, cep, rua, bairro, cidade, estado, numero, nome)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				rm, rec.CEP, rec.Rua, rec.Bairro, rec.Cidade, rec.Estado, rec.Numero, rec.Nome,
			); err != nil {
				return fmt.Errorf("insert customer %s: %w", rm, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}

// Close закрывает пул соединений с БД.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
