package ibeacon

// CompanyName names the vendors whose adverts commonly share the air with
// iBeacons, or returns "" for any other Bluetooth SIG company identifier.
func CompanyName(companyID uint16) string {
	return companyNames[companyID]
}

var companyNames = map[uint16]string{
	CompanyApple: "Apple",
	0x0006:       "Microsoft",
	0x000D:       "Texas Instruments",
	0x0059:       "Nordic Semiconductor",
	0x0075:       "Samsung",
	0x00E0:       "Google",
	0x0118:       "Radius Networks",
	0x015D:       "Estimote",
	0x0171:       "Amazon",
	0x02E5:       "Espressif",
	0x0499:       "Ruuvi",
}
