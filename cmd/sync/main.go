package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yourusername/membership-api/internal/config"
	"github.com/yourusername/membership-api/internal/domain/entity"
	"github.com/yourusername/membership-api/internal/domain/repository"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	appmetrics "github.com/yourusername/membership-api/internal/pkg/metrics"
	pgRepo "github.com/yourusername/membership-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/membership-api/internal/repository/redis"
	"github.com/yourusername/membership-api/internal/service"
	"github.com/yourusername/membership-api/pkg/database"
)

// Фоновый раннер заданий жизненного цикла членства. Один процесс выполняет
// выбранное задание (или все по очереди) и завершается; расписание — забота
// внешнего планировщика (cron / k8s CronJob). Замки в Redis защищают от
// параллельного запуска того же задания другим экземпляром.

const (
	jobTeamSync    = "team-sync"
	jobDrainOutbox = "drain-outbox"
	jobCompliance  = "compliance"
	jobDigest      = "digest"
	jobAll         = "all"
)

func main() {
	jobName := flag.String("job", jobAll, "задание: team-sync | drain-outbox | compliance | digest | all")
	flag.Parse()

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Метрики: эндпоинт живет на время работы процесса,
	// чтобы планировщик/скрейпер успел снять показания
	registry := prometheus.NewRegistry()
	collector := appmetrics.NewCollector(registry)

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Server.MetricsPort,
		Handler: appmetrics.Handler(registry),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	profileRepo := pgRepo.NewProfileRepo(db)
	roleRepo := pgRepo.NewRoleAssignmentRepo(db)
	consentRepo := pgRepo.NewConsentRecordRepo(db)
	docRepo := pgRepo.NewLegalDocumentRepo(db)
	teamRepo := pgRepo.NewTeamRepo(db)
	outboxRepo := pgRepo.NewOutboxRepo(db)
	auditRepo := pgRepo.NewAuditLogRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Документы с областью действия команды Volunteers обязательны для всех
	var globalScopeTeamID uint
	if volunteers, err := teamRepo.GetSystemTeam(entity.SystemTeamVolunteers); err != nil {
		log.Printf("Команда Volunteers не найдена, глобальные документы недоступны: %v", err)
	} else {
		globalScopeTeamID = volunteers.ID
	}

	// Инициализируем сервисы
	auditService := service.NewAuditService(auditRepo)
	membershipService := service.NewMembershipService(profileRepo, roleRepo, consentRepo, docRepo, globalScopeTeamID)
	snapshotService := service.NewSnapshotService(
		membershipService, teamRepo, cacheRepo,
		time.Duration(cfg.Sync.SnapshotTTLSec)*time.Second,
	)

	var groupware service.GroupwareService = service.NewStubGroupwareService()
	groupware = service.NewRateLimitedGroupwareService(groupware, cfg.Sync.GroupwareRPS, cfg.Sync.GroupwareBurst)

	outboxService := service.NewOutboxService(outboxRepo, groupware, collector)
	teamSyncService := service.NewTeamSyncService(
		db, teamRepo, userRepo, profileRepo, roleRepo,
		membershipService, outboxService, auditService, snapshotService, collector,
	)

	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
		emailService = resendService
	}

	complianceService := service.NewComplianceService(
		db, roleRepo, profileRepo, userRepo,
		membershipService, emailService, auditService,
		time.Duration(cfg.Sync.ReminderIntervalHours)*time.Hour,
	)
	digestService := service.NewBoardDigestService(
		db, teamRepo, userRepo, profileRepo, outboxRepo,
		membershipService, emailService, auditService,
		cfg.Outbox.MaxRetry,
	)

	// Контекст с отменой по сигналу: прерванное задание сохраняет уже
	// полученные исходы и выходит чисто
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := &jobRunner{
		locks:      cacheRepo,
		metrics:    collector,
		lockTTL:    time.Duration(cfg.Outbox.LockTTLSec) * time.Second,
		teamSync:   teamSyncService,
		outbox:     outboxService,
		compliance: complianceService,
		digest:     digestService,
		batchSize:  cfg.Outbox.BatchSize,
		maxRetry:   cfg.Outbox.MaxRetry,
	}

	exitCode := 0
	if err := runner.run(ctx, *jobName); err != nil {
		log.Printf("Задание %q завершилось с ошибкой: %v", *jobName, err)
		exitCode = 1
	}

	// Даем скрейперу шанс снять финальные метрики, затем гасим эндпоинт
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}

	os.Exit(exitCode)
}

// jobRunner связывает задания с замками и метриками
type jobRunner struct {
	locks      repository.CacheRepository
	metrics    appmetrics.Recorder
	lockTTL    time.Duration
	teamSync   *service.TeamSyncService
	outbox     *service.OutboxService
	compliance *service.ComplianceService
	digest     *service.BoardDigestService
	batchSize  int
	maxRetry   int
}

func (r *jobRunner) run(ctx context.Context, jobName string) error {
	switch jobName {
	case jobTeamSync:
		return r.runOne(ctx, jobTeamSync, r.runTeamSync)
	case jobDrainOutbox:
		return r.runOne(ctx, jobDrainOutbox, r.runDrainOutbox)
	case jobCompliance:
		return r.runOne(ctx, jobCompliance, r.runCompliance)
	case jobDigest:
		return r.runOne(ctx, jobDigest, r.runDigest)
	case jobAll:
		// Порядок важен: сначала пересчет команд, затем дренаж их эффектов
		if err := r.runOne(ctx, jobTeamSync, r.runTeamSync); err != nil {
			return err
		}
		if err := r.runOne(ctx, jobDrainOutbox, r.runDrainOutbox); err != nil {
			return err
		}
		if err := r.runOne(ctx, jobCompliance, r.runCompliance); err != nil {
			return err
		}
		return r.runOne(ctx, jobDigest, r.runDigest)
	default:
		return fmt.Errorf("неизвестное задание %q", jobName)
	}
}

// runOne запускает задание под замком. Занятый замок — не ошибка процесса:
// другой экземпляр уже делает ту же работу.
func (r *jobRunner) runOne(ctx context.Context, jobName string, fn func(ctx context.Context) error) error {
	err := r.withLock(ctx, jobName, fn)
	if errors.Is(err, apperrors.ErrLocked) {
		return nil
	}
	return err
}

// withLock выполняет задание под замком в Redis.
// Если замок занят другим запуском, возвращает apperrors.ErrLocked.
func (r *jobRunner) withLock(ctx context.Context, jobName string, fn func(ctx context.Context) error) error {
	lockKey := "membership:job-lock:" + jobName

	acquired, err := r.locks.AcquireLock(lockKey, r.lockTTL)
	if err != nil {
		return fmt.Errorf("ошибка захвата замка %s: %w", lockKey, err)
	}
	if !acquired {
		log.Printf("Задание %q уже выполняется другим экземпляром, пропуск", jobName)
		r.metrics.RecordJobRun(jobName, "skipped")
		return fmt.Errorf("задание %q: %w", jobName, apperrors.ErrLocked)
	}
	defer func() {
		if err := r.locks.ReleaseLock(lockKey); err != nil {
			log.Printf("Ошибка освобождения замка %s: %v", lockKey, err)
		}
	}()

	start := time.Now()
	err = fn(ctx)
	switch {
	// Задание может вернуть ошибку контекста само: это тоже отмена, не сбой
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		r.metrics.RecordJobRun(jobName, "cancelled")
	case err == nil && ctx.Err() != nil:
		r.metrics.RecordJobRun(jobName, "cancelled")
	case err == nil:
		r.metrics.RecordJobRun(jobName, "success")
	default:
		r.metrics.RecordJobRun(jobName, "failure")
	}
	log.Printf("Задание %q выполнено за %s", jobName, time.Since(start))
	return err
}

func (r *jobRunner) runTeamSync(ctx context.Context) error {
	return r.teamSync.SyncAll(ctx, time.Now())
}

func (r *jobRunner) runDrainOutbox(ctx context.Context) error {
	report, err := r.outbox.DrainBatch(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		return err
	}
	log.Printf("[OutboxDrain] picked=%d processed=%d failed=%d cancelled=%t",
		report.Picked, report.Processed, report.Failed, report.Cancelled)
	return nil
}

func (r *jobRunner) runCompliance(ctx context.Context) error {
	report, err := r.compliance.Run(ctx, time.Now())
	if err != nil {
		return err
	}
	log.Printf("[Compliance] nonCompliant=%d atRisk=%d notified=%d reminded=%d throttled=%d cancelled=%t",
		report.NonCompliant, report.AtRisk, report.Notified, report.Reminded, report.Throttled, report.Cancelled)
	return nil
}

func (r *jobRunner) runDigest(ctx context.Context) error {
	return r.digest.Run(ctx, time.Now())
}
