package services

import (
	"strconv"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

// AgeOfMajority is the age from which an athlete no longer needs a guardian.
const AgeOfMajority = 18

// CalculateAge subtracts calendar years and takes one off when the birthday has not been
// reached yet in the year of today. An unknown birth date yields -1.
func CalculateAge(birth models.Date, today time.Time) int {
	if birth.IsZero() {
		return -1
	}
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return -1
	}
	return age
}

func ageLabel(age int) string {
	if age < 0 {
		return models.Placeholder
	}
	return strconv.Itoa(age)
}

func isMinor(age int) bool {
	return age >= 0 && age < AgeOfMajority
}
