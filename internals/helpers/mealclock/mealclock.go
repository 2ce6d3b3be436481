// file: internals/helpers/mealclock/mealclock.go
//
// Semua perhitungan deadline & jam slot memakai satu zona tetap (IST, UTC+05:30).
// Kebijakan tunggal ini menggantikan campuran naive-local vs offset di versi lama.
package mealclock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IST = Asia/Kolkata tanpa DST, aman sebagai fixed zone.
var IST = time.FixedZone("IST", 5*3600+30*60)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// ParseDate memvalidasi tanggal kalender "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), IST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// Today = tanggal kalender hari ini dalam IST.
func Today(now time.Time) string {
	return now.In(IST).Format(DateLayout)
}

// ClockMinutes mengubah "HH:MM" / "HH:MM:SS" menjadi menit sejak tengah malam.
func ClockMinutes(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time %q (want HH:MM:SS)", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return h*60 + m, nil
}

// MinutesOfDay = posisi "now" dalam hari IST, satuan menit.
func MinutesOfDay(now time.Time) int {
	t := now.In(IST)
	return t.Hour()*60 + t.Minute()
}

// SlotStart menggabungkan tanggal + jam mulai slot sebagai waktu IST.
func SlotStart(date, startTime string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, strings.TrimSpace(date)+" "+normalizeClock(startTime), IST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date or slot start time")
	}
	return t, nil
}

// Deadline = jam mulai slot + offset jam (boleh negatif).
func Deadline(date, startTime string, offsetHours int) (time.Time, error) {
	start, err := SlotStart(date, startTime)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(offsetHours) * time.Hour), nil
}

// FormatIST merender timestamp dengan offset +05:30 eksplisit untuk response API.
func FormatIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02T15:04:05+05:30")
}

// EndOfDay = batas expiry token QR: akhir hari kalender IST.
func EndOfDay(date string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(24*time.Hour - time.Millisecond), nil
}

// DatesBetween meng-expand range inklusif [from, to] per hari.
func DatesBetween(from, to string) ([]string, error) {
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, fmt.Errorf("invalid date range: from after to")
	}
	var dates []string
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		dates = append(dates, cur.Format(DateLayout))
	}
	return dates, nil
}

// DayCount = jumlah hari inklusif dalam range.
func DayCount(from, to string) (int, error) {
	dates, err := DatesBetween(from, to)
	if err != nil {
		return 0, err
	}
	return len(dates), nil
}

func normalizeClock(clock string) string {
	c := strings.TrimSpace(clock)
	if strings.Count(c, ":") == 1 {
		return c + ":00"
	}
	return c
}
