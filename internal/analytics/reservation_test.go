package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brigade/internal/models"
)

// reservationDataset has ten bookings for two at one four-top, two of them no-shows,
// and 16 seats' worth of dine-in revenue at 1000 per guest.
func reservationDataset() *Dataset {
	ds := emptyDataset()
	ds.Tables = []models.Table{{ID: 1, RestaurantID: 1, Number: 4, Capacity: 4}}
	for i := 0; i < 10; i++ {
		status := models.ReservationCompleted
		if i < 2 {
			status = models.ReservationNoShow
		}
		ds.Reservations = append(ds.Reservations, models.Reservation{
			ID:        uint(i + 1),
			TableID:   ptrUint(1),
			PartySize: 2,
			Date:      daysAgo(3, 0),
			Time:      "19:00",
			Status:    status,
			CreatedAt: daysAgo(5, 10),
		})
	}
	for i := uint(1); i <= 8; i++ {
		ds.Orders = append(ds.Orders, order(i, daysAgo(3, 20), models.OrderStatusServed, 2000))
	}
	return ds
}

func TestAnalyzeReservations_Overbooking(t *testing.T) {
	report := AnalyzeReservations(reservationDataset(), testNow, DefaultPolicy())
	require.False(t, report.Empty())

	ns := report.NoShowAnalysis
	assert.Equal(t, 10, ns.TotalReservations)
	assert.Equal(t, 20.0, ns.NoShowRate)
	assert.Equal(t, 80.0, ns.CompletionRate)

	assert.Equal(t, 14.0, report.Overbooking.RecommendedRate)
	assert.Equal(t, int64(560), report.Overbooking.PotentialMonthlyRecovery)
	assert.Equal(t, "medium", report.Overbooking.RiskLevel)
}

func TestAnalyzeReservations_RevenueAndUtilization(t *testing.T) {
	report := AnalyzeReservations(reservationDataset(), testNow, DefaultPolicy())

	ri := report.RevenueImpact
	assert.Equal(t, int64(16000), ri.TotalDineInRevenue)
	assert.Equal(t, int64(1000), ri.AvgSpendPerGuest)
	assert.Equal(t, 4, ri.NoShowSeatsLost)
	assert.Equal(t, int64(4000), ri.EstimatedRevenueLost)
	assert.Equal(t, 25.0, ri.LostPctOfDineRevenue)

	require.Len(t, report.TableUtilization, 1)
	tu := report.TableUtilization[0]
	assert.Equal(t, 50.0, tu.SeatUtilizationPct)
	// 50% is neither under 50 nor within 70-100
	assert.Equal(t, RatingOverbooked, tu.Rating)
	assert.Equal(t, int64(16000), tu.EstimatedRevenue)

	assert.Equal(t, 144.0, report.RevPASH.TotalSeatHours)
	assert.Equal(t, 111.11, report.RevPASH.RevPASH)
}

func TestAnalyzeReservations_Breakdowns(t *testing.T) {
	report := AnalyzeReservations(reservationDataset(), testNow, DefaultPolicy())
	ns := report.NoShowAnalysis

	require.Len(t, ns.NoShowByDay, 1)
	assert.Equal(t, "Tuesday", ns.NoShowByDay[0].Day)
	assert.Equal(t, 20.0, ns.NoShowByDay[0].NoShowRate)

	require.Len(t, ns.NoShowByTimeSlot, 1)
	assert.Equal(t, "dinner_early", ns.NoShowByTimeSlot[0].Segment)
	require.Len(t, ns.NoShowByPartySize, 1)
	assert.Equal(t, "1-2", ns.NoShowByPartySize[0].Segment)

	lt := report.LeadTimeAnalysis
	assert.Equal(t, 2.0, lt.AvgDays)
	assert.Equal(t, 2, lt.MedianDays)
	assert.Equal(t, 10, lt.Distribution.TwoThree)

	require.Len(t, report.PeakWindows, 1)
	assert.Equal(t, DemandWindow{Window: "19:00", Bookings: 10, FillRate: 80}, report.PeakWindows[0])

	var types []string
	for _, rec := range report.Recommendations {
		types = append(types, rec.Type)
	}
	assert.Equal(t, []string{"no_show", "overbooking"}, types)
	assert.Equal(t, SeverityCritical, report.Recommendations[0].Priority)
}

func TestAnalyzeReservations_Deposits(t *testing.T) {
	ds := reservationDataset()
	for i := range ds.Reservations {
		if ds.Reservations[i].Status == models.ReservationCompleted && i < 6 {
			ds.Reservations[i].DepositPaid = true
		}
	}

	da := AnalyzeReservations(ds, testNow, DefaultPolicy()).NoShowAnalysis.DepositAnalysis
	assert.Equal(t, 4, da.WithDeposit.Total)
	assert.Equal(t, 0, da.WithDeposit.NoShows)
	assert.Equal(t, 6, da.WithoutDeposit.Total)
	assert.Equal(t, 33.3, da.WithoutDeposit.NoShowRate)
	assert.Equal(t, 50.0, da.DepositEffectiveness)
}

func TestAnalyzeReservations_MissingTimeDefaultsToEarlyDinner(t *testing.T) {
	ds := reservationDataset()
	for i := range ds.Reservations {
		ds.Reservations[i].Time = ""
	}

	report := AnalyzeReservations(ds, testNow, DefaultPolicy())
	assert.Equal(t, "dinner_early", report.NoShowAnalysis.NoShowByTimeSlot[0].Segment)
	assert.Empty(t, report.PeakWindows)
}

func TestAnalyzeReservations_Empty(t *testing.T) {
	report := AnalyzeReservations(emptyDataset(), testNow, DefaultPolicy())
	assert.True(t, report.Empty())
	assert.Equal(t, "low", report.Overbooking.RiskLevel)
	assert.NotNil(t, report.Recommendations)
	assert.Equal(t, ReservationSummary{}, report.Summary())
}
