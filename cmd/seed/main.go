package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-bed-scheduling/internal/appointment"
	"github.com/hackgods/hospital-bed-scheduling/internal/bed"
	"github.com/hackgods/hospital-bed-scheduling/internal/catalog"
	"github.com/hackgods/hospital-bed-scheduling/internal/db"
	"github.com/hackgods/hospital-bed-scheduling/internal/logger"
	redisclient "github.com/hackgods/hospital-bed-scheduling/internal/redis"
)

var appointmentTypes = []string{"consultation", "checkup", "follow-up", "surgery", "emergency"}

func main() {
	log, err := logger.New(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FORMAT", "console"), "seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	bedsPerHospital := getInt("SEED_BEDS_PER_HOSPITAL", 20)
	demoAppointments := getInt("SEED_APPOINTMENTS", 0)

	log.Info("seed starting",
		zap.Int("beds_per_hospital", bedsPerHospital),
		zap.Int("demo_appointments", demoAppointments))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.ApplySchema(ctx, pool); err != nil {
		log.Fatal("apply schema", zap.Error(err))
	}

	if err := seedBeds(ctx, pool, bedsPerHospital, log); err != nil {
		log.Fatal("seed beds", zap.Error(err))
	}

	if demoAppointments > 0 {
		svc := appointment.NewService(appointment.NewPgStore(pool), redisclient.NopLocker{}, log)
		if err := seedAppointments(ctx, svc, demoAppointments, log); err != nil {
			log.Fatal("seed appointments", zap.Error(err))
		}
	}

	log.Info("seed complete")
}

func seedBeds(ctx context.Context, pool *pgxpool.Pool, perHospital int, log *zap.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	reg := bed.NewPgRegistry(tx)
	for _, hospital := range catalog.Hospitals() {
		created := 0
		for n := 1; n <= perHospital; n++ {
			ok, err := reg.Provision(ctx, hospital, n)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		log.Info("beds provisioned", zap.String("hospital", hospital), zap.Int("created", created))
	}

	return tx.Commit(ctx)
}

func seedAppointments(ctx context.Context, svc *appointment.Service, count int, log *zap.Logger) error {
	faker := gofakeit.New(uint64(time.Now().UnixNano()))
	hospitals := catalog.Hospitals()
	slots := catalog.TimeSlots()

	booked := 0
	for i := 0; i < count; i++ {
		hospital := hospitals[faker.Number(0, len(hospitals)-1)]
		doctors := catalog.Doctors(hospital)
		age := faker.Number(1, 95)

		_, err := svc.CreateAppointment(ctx, appointment.CreateInput{
			PatientName:     faker.Name(),
			PatientAge:      &age,
			PatientGender:   faker.Gender(),
			Doctor:          doctors[faker.Number(0, len(doctors)-1)],
			AppointmentType: appointmentTypes[faker.Number(0, len(appointmentTypes)-1)],
			AppointmentDate: faker.DateRange(time.Now(), time.Now().AddDate(0, 1, 0)).Format("2006-01-02"),
			AppointmentTime: slots[faker.Number(0, len(slots)-1)],
			Hospital:        hospital,
		})
		if errors.Is(err, appointment.ErrNoBedsAvailable) {
			log.Info("hospital full, skipping", zap.String("hospital", hospital))
			continue
		}
		if err != nil {
			return err
		}
		booked++
	}

	log.Info("demo appointments seeded", zap.Int("booked", booked), zap.Int("requested", count))
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
