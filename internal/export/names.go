package export

import "strconv"

func CSVFilename(year int) string { return "calendar-" + strconv.Itoa(year) + ".csv" }

func ICSFilename(year int) string { return "business-calendar-" + strconv.Itoa(year) + ".ics" }

func PDFFilename(year int) string { return "business-calendar-" + strconv.Itoa(year) + ".pdf" }

func JSONFilename(year int) string { return "calendar-" + strconv.Itoa(year) + ".json" }
