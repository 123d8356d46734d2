package weather

type condition struct {
	icon string
	desc string
}

// wmoCodes maps WMO weather interpretation codes to a glyph and a Portuguese label.
var wmoCodes = map[int]condition{
	0:  {"☀️", "Céu limpo"},
	1:  {"🌤", "Poucas nuvens"},
	2:  {"⛅", "Parcialmente nublado"},
	3:  {"☁️", "Nublado"},
	45: {"🌫", "Nevoeiro"},
	48: {"🌫", "Nevoeiro gelado"},
	51: {"🌦", "Chuviscos ligeiros"},
	53: {"🌦", "Chuviscos"},
	55: {"🌧", "Chuviscos fortes"},
	61: {"🌧", "Chuva ligeira"},
	63: {"🌧", "Chuva moderada"},
	65: {"🌧", "Chuva forte"},
	71: {"🌨", "Neve ligeira"},
	73: {"🌨", "Neve moderada"},
	75: {"❄️", "Neve forte"},
	80: {"🌦", "Aguaceiros ligeiros"},
	81: {"🌧", "Aguaceiros"},
	82: {"⛈", "Aguaceiros fortes"},
	95: {"⛈", "Trovoada"},
	96: {"⛈", "Trovoada com granizo"},
	99: {"⛈", "Trovoada forte"},
}

// Describe returns the icon and label for a WMO code.
func Describe(code int) (icon, desc string) {
	if c, ok := wmoCodes[code]; ok {
		return c.icon, c.desc
	}
	return "🌡", "Desconhecido"
}
