package main

import (
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/config"
	"hospital-appointment-server/internal/models"
)

const (
	adminEmail    = "admin@hospital.com"
	adminPassword = "admin123"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedAdmin(db); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	specs, err := seedSpecializations(db)
	if err != nil {
		log.Fatalf("seed specializations: %v", err)
	}
	doctors, err := seedDoctors(db, specs, 10)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatients(db, 30); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAvailability(db, doctors); err != nil {
		log.Fatalf("seed availability: %v", err)
	}

	log.Println("seed complete")
	log.Printf("admin login: %s / %s", adminEmail, adminPassword)
}

func seedAdmin(db *gorm.DB) error {
	var existing models.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		log.Println("admin user already exists")
		return nil
	}

	user := models.User{Email: adminEmail, Role: models.RoleAdmin}
	if err := user.SetPassword(adminPassword); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.AdminProfile{
			UserID: user.ID,
			Name:   "System Administrator",
		}
		return tx.Create(&profile).Error
	})
}

func seedSpecializations(db *gorm.DB) ([]models.Specialization, error) {
	names := []string{
		"Cardiology",
		"Dermatology",
		"General Practice",
		"Neurology",
		"Orthopedics",
		"Pediatrics",
	}

	var specs []models.Specialization
	for _, name := range names {
		spec := models.Specialization{Name: name, Description: gofakeit.Sentence(8)}
		if err := db.Where("name = ?", name).FirstOrCreate(&spec).Error; err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func seedDoctors(db *gorm.DB, specs []models.Specialization, count int) ([]models.DoctorProfile, error) {
	log.Printf("seeding %d doctors", count)

	var doctors []models.DoctorProfile
	for i := 0; i < count; i++ {
		user := models.User{
			Email: fmt.Sprintf("doctor%d@hospital.com", i+1),
			Role:  models.RoleDoctor,
		}
		if err := user.SetPassword("doctor123"); err != nil {
			return nil, err
		}

		spec := specs[gofakeit.Number(0, len(specs)-1)]
		var profile models.DoctorProfile

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			profile = models.DoctorProfile{
				UserID:           user.ID,
				Name:             gofakeit.Name(),
				SpecializationID: spec.ID,
				Phone:            gofakeit.Phone(),
				Bio:              gofakeit.Sentence(15),
				ExperienceYears:  gofakeit.Number(1, 30),
				IsActive:         true,
			}
			return tx.Create(&profile).Error
		})
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, profile)
	}
	return doctors, nil
}

func seedPatients(db *gorm.DB, count int) error {
	log.Printf("seeding %d patients", count)

	for i := 0; i < count; i++ {
		user := models.User{
			Email: fmt.Sprintf("patient%d@example.com", i+1),
			Role:  models.RolePatient,
		}
		if err := user.SetPassword("patient123"); err != nil {
			return err
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			profile := models.PatientProfile{
				UserID:      user.ID,
				Name:        gofakeit.Name(),
				Phone:       gofakeit.Phone(),
				DateOfBirth: gofakeit.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC)).Format("2006-01-02"),
				Address:     gofakeit.Address().Address,
			}
			return tx.Create(&profile).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func seedAvailability(db *gorm.DB, doctors []models.DoctorProfile) error {
	log.Println("seeding availability windows")

	slots := [][2]string{
		{"09:00", "12:00"},
		{"14:00", "17:00"},
	}

	for _, doctor := range doctors {
		for day := 0; day < 5; day++ {
			date := time.Now().AddDate(0, 0, day).Format("2006-01-02")
			slot := slots[gofakeit.Number(0, len(slots)-1)]
			window := models.AvailabilityWindow{
				DoctorID:    doctor.ID,
				Date:        date,
				StartTime:   slot[0],
				EndTime:     slot[1],
				IsAvailable: true,
			}
			if err := db.Where("doctor_id = ? AND date = ? AND start_time = ? AND end_time = ?",
				doctor.ID, date, slot[0], slot[1]).FirstOrCreate(&window).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
