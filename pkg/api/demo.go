package api

import (
	"fmt"
	"time"

	"github.com/goliatone/go-gymdesk/components/gym"
)

// DemoData returns a small, deterministic gym used by `gymctl serve --demo`.
// Dates are relative to now so expiry alerts and today's attendance are populated.
func DemoData(now time.Time) MockData {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	plans := []gym.Plan{
		{ID: "plan-basic", PlanName: "Basic", Price: 1000, Duration: gym.PlanDuration{Value: 1, Unit: gym.UnitMonths}, AccessType: []string{"Gym"}, IsActive: true},
		{ID: "plan-plus", PlanName: "Plus", Price: 2500, Duration: gym.PlanDuration{Value: 3, Unit: gym.UnitMonths}, AccessType: []string{"Gym", "Classes"}, IsActive: true},
		{ID: "plan-elite", PlanName: "Elite", Price: 9000, Duration: gym.PlanDuration{Value: 12, Unit: gym.UnitMonths}, AccessType: []string{"Gym", "Classes", "Spa"}, IsActive: true},
		{ID: "plan-trial", PlanName: "Trial", Price: 0, Duration: gym.PlanDuration{Value: 7, Unit: gym.UnitDays}, AccessType: []string{"Gym"}, IsActive: false},
	}
	trainers := []gym.Trainer{
		{ID: "trainer-1", TrainerID: "TRN001", FullName: "Asha Rao", Specialization: []string{"Yoga", "Pilates"}, Experience: 6, Price: 150, Salary: 30000, IsActive: true},
		{ID: "trainer-2", TrainerID: "TRN002", FullName: "Marco Diaz", Specialization: []string{"Strength Training", "CrossFit"}, Experience: 9, Price: 300, Salary: 42000, IsActive: true},
		{ID: "trainer-3", TrainerID: "TRN003", FullName: "Lena Fischer", Specialization: []string{"Zumba"}, Experience: 2, Price: 120, IsActive: false},
	}

	names := []string{"Priya Shah", "Tom Becker", "Nadia Khan", "Oliver Stone", "Mei Lin", "Ravi Kumar", "Sara Ortiz", "Jon Park"}
	members := make([]gym.Member, 0, len(names))
	for i, name := range names {
		plan := plans[i%3]
		joined := day.AddDate(0, 0, -30*(i+1))
		// Every third member's plan ends within the next few days.
		end := day.AddDate(0, 0, 40+i)
		if i%3 == 0 {
			end = day.AddDate(0, 0, i%5+1)
		}
		start := joined
		member := gym.Member{
			ID:               fmt.Sprintf("member-%d", i+1),
			MemberID:         fmt.Sprintf("GYM%04d", i+1),
			FullName:         name,
			Gender:           []string{"Female", "Male"}[i%2],
			Phone:            fmt.Sprintf("555-01%02d", i+1),
			DateOfBirth:      time.Date(1985+i, time.Month(i%12+1), 10+i, 0, 0, 0, 0, time.UTC),
			MembershipStatus: gym.StatusActive,
			JoinDate:         joined,
			PlanStartDate:    &start,
			PlanEndDate:      &end,
			CurrentPlan:      gym.RefOf(plan),
		}
		if i == 6 {
			member.MembershipStatus = gym.StatusExpired
		}
		if i%2 == 0 {
			member.AssignedTrainer = gym.RefOf(trainers[i%4/2])
		}
		members = append(members, member)
	}

	var attendance []gym.AttendanceRecord
	for i, member := range members[:5] {
		in := day.Add(time.Duration(7+i%3) * time.Hour).Add(time.Duration(i*7) * time.Minute)
		record := gym.AttendanceRecord{
			ID:             fmt.Sprintf("attendance-%d", i+1),
			Member:         gym.RefOf(summarize(member)),
			Date:           day,
			CheckInTime:    in,
			AttendanceType: gym.AttendanceManual,
			Status:         "Present",
		}
		if i%2 == 1 {
			out := in.Add(75 * time.Minute)
			record.CheckOutTime = &out
		}
		attendance = append(attendance, record)
	}

	var payments []gym.Payment
	for i, member := range members {
		status := gym.PaymentPaid
		if i%4 == 3 {
			status = gym.PaymentPending
		}
		plan, _ := member.CurrentPlan.Doc()
		payments = append(payments, gym.Payment{
			ID:            fmt.Sprintf("payment-%d", i+1),
			Member:        gym.RefOf(summarize(member)),
			Plan:          member.CurrentPlan,
			FinalAmount:   plan.Price,
			PaymentStatus: status,
			PaymentMethod: []string{"Cash", "Card", "UPI"}[i%3],
			PaymentDate:   day.AddDate(0, 0, -i),
			ReceiptNumber: fmt.Sprintf("RCP%05d", i+1),
		})
	}

	return MockData{
		Members:    members,
		Trainers:   trainers,
		Plans:      plans,
		Attendance: attendance,
		Payments:   payments,
		Accounts:   map[string]string{"admin": "admin123"},
	}
}
