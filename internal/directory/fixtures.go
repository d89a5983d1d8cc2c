package directory

import (
	"fmt"
	"strings"
	"time"
)

var (
	fixtureNames = []string{
		"Andi Saputra", "Budi Santoso", "Citra Maharani", "Dimas Prakoso", "Eka Putri",
		"Fajar Nugroho", "Gita Permata", "Hendra Wijaya", "Indah Sari", "Joko Susilo",
		"Kartika Dewi", "Lukman Hakim", "Maya Anggraini", "Nanda Kurniawan", "Oki Firmansyah",
		"Putri Ayu", "Rizky Ramadhan", "Siti Nurhaliza", "Taufik Hidayat", "Umi Kalsum",
		"Vina Oktaviani", "Wahyu Setiawan", "Yusuf Maulana", "Zahra Amelia",
	}
	fixtureLocations = []string{"Jakarta Selatan", "Bandung", "Surabaya", "Depok", "Bekasi", "Yogyakarta"}
	fixturePlans     = []Plan{
		{ID: 1, Name: "Home Lite 20", SpeedMbps: 20, Price: 199000, Quota: "Unlimited", Active: true},
		{ID: 2, Name: "Home 50", SpeedMbps: 50, Price: 329000, Quota: "Unlimited", Active: true},
		{ID: 3, Name: "Home Max 100", SpeedMbps: 100, Price: 489000, Quota: "Unlimited", Active: true},
		{ID: 4, Name: "Gamer 300", SpeedMbps: 300, Price: 899000, Quota: "Unlimited", Active: true},
		{ID: 5, Name: "Business 500", SpeedMbps: 500, Price: 2499000, Quota: "Unlimited", Active: true},
		{ID: 6, Name: "Legacy 10", SpeedMbps: 10, Price: 149000, Quota: "300 GB", Active: false},
	}
	fixtureEngineers = []struct {
		name           string
		specialization string
	}{
		{"Rudi Hartono", "Fiber splicing"},
		{"Agung Wibowo", "ONT installation"},
		{"Dedi Kurnia", "Network troubleshooting"},
		{"Eko Prasetyo", "Fiber splicing"},
		{"Fitri Handayani", "Customer premises wiring"},
		{"Galih Saputra", "OLT maintenance"},
		{"Hana Lestari", "Network troubleshooting"},
		{"Irfan Maulana", "ONT installation"},
	}
	fixtureComplaints = []struct {
		title       string
		description string
		priority    string
	}{
		{"No internet connection", "ONT shows red LOS light since morning", "critical"},
		{"Slow speed at night", "Speed drops below 5 Mbps between 19:00 and 23:00", "medium"},
		{"Intermittent disconnects", "Connection drops every few minutes", "high"},
		{"Router replacement request", "Router overheats and restarts", "low"},
		{"Billing mismatch", "Charged for Home Max 100 while subscribed to Home 50", "medium"},
		{"Cable damaged by construction", "Drop cable cut near the front gate", "critical"},
		{"WiFi range too short", "Signal weak on the second floor", "low"},
		{"High latency in games", "Ping above 150 ms to local servers", "medium"},
	}
	complaintStatuses = []string{ComplaintOpen, ComplaintInProgress, ComplaintResolved, ComplaintClosed}
	leadStages        = []string{LeadNew, LeadContacted, LeadSurvey, LeadWon, LeadLost}
	leadSources       = []string{"website", "referral", "walk-in", "social"}
)

// Fixtures returns the demo dataset served when no backing store is configured.
// It is deterministic for a given reference time.
func Fixtures(now time.Time) *MemorySource {
	base := now.UTC().Truncate(24 * time.Hour)

	plans := make([]Plan, len(fixturePlans))
	copy(plans, fixturePlans)

	customers := make([]Customer, 0, len(fixtureNames))
	for i, name := range fixtureNames {
		plan := plans[i%5]
		status := CustomerActive
		switch {
		case i%11 == 10:
			status = CustomerSuspended
		case i%13 == 12:
			status = CustomerInactive
		}
		customers = append(customers, Customer{
			ID:         int64(i + 1),
			Name:       name,
			Email:      emailFor(name, "mail.id"),
			Phone:      fmt.Sprintf("+62-812-%04d-%04d", 1000+i*37, 2000+i*53),
			Location:   fixtureLocations[i%len(fixtureLocations)],
			PlanName:   plan.Name,
			Status:     status,
			MonthlyFee: plan.Price,
			JoinedAt:   base.AddDate(0, -i-1, -i),
		})
		if status == CustomerActive {
			plans[i%5].Subscribers++
		}
	}

	engineers := make([]Engineer, 0, len(fixtureEngineers))
	for i, e := range fixtureEngineers {
		var rating *float64
		if i%4 != 3 {
			r := 4.0 + float64(i%5)/5
			rating = &r
		}
		status := "available"
		if i%3 == 1 {
			status = "on-job"
		}
		engineers = append(engineers, Engineer{
			ID:             int64(i + 1),
			Name:           e.name,
			Email:          emailFor(e.name, "fiberdesk.local"),
			Phone:          fmt.Sprintf("+62-813-%04d-%04d", 3000+i*41, 4000+i*29),
			Location:       fixtureLocations[i%len(fixtureLocations)],
			Specialization: e.specialization,
			Status:         status,
			ActiveJobs:     i % 4,
			Rating:         rating,
		})
	}

	complaints := make([]Complaint, 0, 30)
	for i := 0; i < 30; i++ {
		tpl := fixtureComplaints[i%len(fixtureComplaints)]
		customer := customers[(i*7)%len(customers)]
		status := complaintStatuses[i%len(complaintStatuses)]
		complaint := Complaint{
			ID:           int64(i + 1),
			Title:        tpl.title,
			Description:  tpl.description,
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			Location:     customer.Location,
			Status:       status,
			Priority:     tpl.priority,
			CreatedAt:    base.Add(-time.Duration(i*9) * time.Hour),
		}
		if status != ComplaintOpen {
			complaint.EngineerName = engineers[i%len(engineers)].Name
		}
		if status == ComplaintResolved || status == ComplaintClosed {
			resolved := complaint.CreatedAt.Add(6 * time.Hour)
			complaint.ResolvedAt = &resolved
		}
		complaints = append(complaints, complaint)
	}

	leads := make([]Lead, 0, 15)
	for i := 0; i < 15; i++ {
		name := fixtureNames[len(fixtureNames)-1-i]
		first := strings.Fields(name)[0]
		leads = append(leads, Lead{
			ID:           int64(i + 1),
			Name:         first + " Household",
			Email:        emailFor(first+" prospect", "mail.id"),
			Phone:        fmt.Sprintf("+62-857-%04d-%04d", 5000+i*17, 6000+i*23),
			Location:     fixtureLocations[(i+2)%len(fixtureLocations)],
			PlanInterest: plans[i%4].Name,
			Stage:        leadStages[i%len(leadStages)],
			Source:       leadSources[i%len(leadSources)],
			CreatedAt:    base.AddDate(0, 0, -i*3),
		})
	}

	return NewMemorySource(customers, engineers, complaints, plans, leads)
}

func emailFor(name, domain string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ".")) + "@" + domain
}
