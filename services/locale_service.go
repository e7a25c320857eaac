package services

import (
	"strings"
)

// DefaultLanguage is used whenever a requested language is unknown
const DefaultLanguage = "en"

// Translation holds the display labels and message templates of one
// language. It only labels output; it never changes any computation.
type Translation struct {
	// column keys -> human readable column names
	AboColumns      map[string]string
	DeliveryColumns map[string]string

	// cycle type -> display name
	CycleTypes map[string]string

	// Monday-first weekday names and January-first month names
	Weekdays [7]string
	Months   [12]string

	// message templates; placeholders are filled by the caller
	Messages map[string]string
}

var translations = map[string]Translation{
	"en": {
		AboColumns: map[string]string{
			"id":            "id",
			"customer_id":   "Customer id",
			"update_date":   "Update day",
			"cycle_type":    "Cycle",
			"interval":      "Interval",
			"next_delivery": "Next delivery",
			"product":       "Product",
			"subcategory":   "Subcategory",
			"quantity":      "Qnt.",
		},
		DeliveryColumns: map[string]string{
			"category_name":     "Category",
			"product_name":      "Product",
			"subcategory_name":  "Type",
			"quantity":          "Qnt.",
			"cost":              "Cost",
			"total":             "Total",
			"total_cost":        "Total",
			"customer_street":   "Street",
			"customer_nr":       "Nr.",
			"customer_name":     "Name",
			"customer_surname":  "Surname",
			"customer_town":     "Town",
			"customer_phone":    "Phone",
			"customer_mobile":   "Mobile",
			"customer_notes":    "Notes",
			"customer_approach": "Approach",
		},
		CycleTypes: map[string]string{
			"none":     "None",
			"day":      "Weekday",
			"interval": "Interval",
		},
		Weekdays: [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
		Months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		Messages: map[string]string{
			"noDelivery":        "There are no delivery orders for tomorrow.",
			"notFound":          "'%s' was not found.",
			"notFoundWithId":    "'%s' was not found (id = '%d').",
			"addedToDb":         "'%s' was successfully added! Please refresh the view.",
			"deletedFromDb":     "'%s' successfully deleted!",
			"updatedDb":         "'%s' successfully updated!",
			"booked":            "Booked %d orders; %d subscriptions advanced.",
			"defaultProtection": "'Default' entries can not be deleted.",
			"backupCreated":     "Backup successfully created. Stored at: %s",
		},
	},
	"de": {
		AboColumns: map[string]string{
			"id":            "id",
			"customer_id":   "Konsumenten id",
			"update_date":   "Update Tag",
			"cycle_type":    "Zyklus",
			"interval":      "Intervall",
			"next_delivery": "Nächste Lieferung",
			"product":       "Produkt",
			"subcategory":   "Subkategorie",
			"quantity":      "Qnt.",
		},
		DeliveryColumns: map[string]string{
			"category_name":     "Kategorie",
			"product_name":      "Produkt",
			"subcategory_name":  "Type",
			"quantity":          "Qnt.",
			"cost":              "Kosten",
			"total":             "Total",
			"total_cost":        "Total",
			"customer_street":   "Straße",
			"customer_nr":       "Nr.",
			"customer_name":     "Name",
			"customer_surname":  "Nachname",
			"customer_town":     "Ort",
			"customer_phone":    "Tel.",
			"customer_mobile":   "Mobile",
			"customer_notes":    "Notiz",
			"customer_approach": "Anfahrt",
		},
		CycleTypes: map[string]string{
			"none":     "None",
			"day":      "Wochentag",
			"interval": "Intervall",
		},
		Weekdays: [7]string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag", "Sonntag"},
		Months: [12]string{
			"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember",
		},
		Messages: map[string]string{
			"noDelivery":        "Für morgen gibt es keine Lieferaufträge.",
			"notFound":          "'%s' wurde nicht gefunden.",
			"notFoundWithId":    "'%s' wurde nicht gefunden (id = '%d').",
			"addedToDb":         "'%s' wurde erfolgreich hinzugefügt! Bitte aktualisieren Sie die Ansicht.",
			"deletedFromDb":     "'%s' erfolgreich gelöscht!",
			"updatedDb":         "'%s' erfolgreich geupdated!",
			"booked":            "%d Bestellungen gebucht; %d Abos aktualisiert.",
			"defaultProtection": "'Standardwerte' können nicht gelöscht werden.",
			"backupCreated":     "Backup erfolgreich erstellt. Gespeichert unter: %s",
		},
	},
}

// GetTranslation returns the translation for the given ISO language code,
// falling back to the default language for unknown codes
func GetTranslation(language string) Translation {
	if t, ok := translations[strings.ToLower(language)]; ok {
		return t
	}
	return translations[DefaultLanguage]
}

// SupportedLanguages lists the available language codes
func SupportedLanguages() []string {
	return []string{"en", "de"}
}
