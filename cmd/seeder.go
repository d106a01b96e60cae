package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

type seedProgram struct {
	Name             string
	Slug             string
	TargetAmount     int64
	ShortDescription string
	Status           string
	Days             int
}

var seedPrograms = []seedProgram{
	{"Bantu Pembangunan Masjid", "bantu-pembangunan-masjid", 500000000, "Renovasi masjid desa yang rusak diterjang banjir.", "active", 90},
	{"Beasiswa Anak Yatim", "beasiswa-anak-yatim", 150000000, "Biaya sekolah satu tahun untuk anak yatim.", "active", 180},
	{"Air Bersih untuk Desa", "air-bersih-untuk-desa", 75000000, "Sumur bor dan tandon air untuk desa di NTT.", "active", 60},
	{"Paket Sembako Ramadhan", "paket-sembako-ramadhan", 50000000, "Paket sembako untuk keluarga prasejahtera.", "completed", 30},
	{"Ambulans Gratis", "ambulans-gratis", 300000000, "Pengadaan ambulans untuk warga kurang mampu.", "draft", 120},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample donation programs for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM donations").Error; err != nil {
				log.Fatalf("failed to clear donations: %v", err)
			}
			if err := db.Exec("DELETE FROM donation_programs").Error; err != nil {
				log.Fatalf("failed to clear donation programs: %v", err)
			}
			fmt.Println("Cleared donations and donation programs")
		}

		today := time.Now().Truncate(24 * time.Hour)
		for _, p := range seedPrograms {
			var exists int
			row := db.Raw("SELECT 1 FROM donation_programs WHERE slug = ?", p.Slug).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("donation program %s already exists\n", p.Slug)
				continue
			}

			err := db.Exec(`INSERT INTO donation_programs
				(name, slug, target_amount, short_description, status, start_date, end_date, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, now(), now())`,
				p.Name, p.Slug, p.TargetAmount, p.ShortDescription, p.Status, today, today.AddDate(0, 0, p.Days)).Error
			if err != nil {
				log.Fatalf("failed to insert donation program %s: %v", p.Slug, err)
			}
			fmt.Printf("Seeded donation program: %s\n", p.Name)
		}

		fmt.Println("Donation programs seeded successfully")
	},
}
