package weather

// conditionLabels maps Yandex Weather condition codes to Russian display labels.
var conditionLabels = map[string]string{
	"clear":                  "ясно",
	"partly-cloudy":          "малооблачно",
	"cloudy":                 "облачно с прояснениями",
	"overcast":               "пасмурно",
	"drizzle":                "морось",
	"light-rain":             "небольшой дождь",
	"rain":                   "дождь",
	"moderate-rain":          "умеренно сильный дождь",
	"heavy-rain":             "сильный дождь",
	"continuous-heavy-rain":  "длительный сильный дождь",
	"showers":                "ливень",
	"wet-snow":               "дождь со снегом",
	"light-snow":             "небольшой снег",
	"snow":                   "снег",
	"snow-showers":           "снегопад",
	"hail":                   "град",
	"thunderstorm":           "гроза",
	"thunderstorm-with-rain": "дождь с грозой",
	"thunderstorm-with-hail": "гроза с градом",
}

// LookupCondition returns the display label for a provider condition code.
func LookupCondition(code string) (string, bool) {
	label, ok := conditionLabels[code]
	return label, ok
}

// Condition translates code, falling back to the variant's label for unknown codes.
func (v Variant) Condition(code string) string {
	if label, ok := LookupCondition(code); ok {
		return label
	}
	if v == VariantForecast {
		return UnknownCondition
	}
	return NotAvailable
}
