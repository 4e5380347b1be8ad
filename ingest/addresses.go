package ingest

import "strings"

// officeAddresses is the fallback address book used when an office record
// arrives without an address.
var officeAddresses = map[string]string{
	"актау":            "17-й микрорайон, Бизнес-центр «Urban», зд. 22",
	"актобе":           "пр. Алии Молдагуловой, 44",
	"алматы":           "пр-т Аль-Фараби, 77/7 БЦ «Esentai Tower», 7 этаж",
	"астана":           "Есиль район, Достық 16, БЦ «Talan Towers», 27 этаж",
	"атырау":           "ул. Студенческая 52, БЦ «Адал», 2 этаж, 201 офис",
	"караганда":        "пр. Нуркена Абдирова, ст 12 НП 3, 2 этаж",
	"кокшетау":         "пр-т Назарбаева, д. 4/2",
	"костанай":         "пр-т Аль-Фараби 65, 12 этаж, офис №1201",
	"кызылорда":        "ул. Кунаева 4, БЦ Прима Парк",
	"павлодар":         "ул. Луговая 16, «Дом инвесторов», 7 этаж",
	"петропавловск":    "ул. Букетова 31А",
	"тараз":            "ул. Желтоксан 86",
	"уральск":          "ул. Ескалиева, д. 177, оф. 505",
	"орал":             "ул. Ескалиева, д. 177, оф. 505",
	"усть-каменогорск": "ул. Максима Горького, д. 50",
	"шымкент":          "ул. Кунаева, д. 59, 1 этаж",
}

// resolveAddress keeps a non-empty record address, otherwise looks the
// office up in the address book.
func resolveAddress(officeName, recordAddress string) string {
	addr := strings.TrimSpace(recordAddress)
	if addr != "" && !strings.EqualFold(addr, "nan") && !strings.EqualFold(addr, "none") {
		return addr
	}

	key := strings.ToLower(strings.TrimSpace(officeName))
	for _, prefix := range []string{"г.", "город ", "city "} {
		key = strings.TrimSpace(strings.TrimPrefix(key, prefix))
	}
	key = strings.ReplaceAll(key, "ё", "е")
	return officeAddresses[key]
}
