package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"astro-highpass/internal/logging"
	"astro-highpass/pkg/units"

	"go.uber.org/zap"
)

func main() {
	value := flag.Float64("value", 1, "Value to convert")
	from := flag.String("from", "km", "Source unit")
	to := flag.String("to", "m", "Target unit")
	list := flag.Bool("list", false, "List known units")
	flag.Parse()

	logger := logging.Must("warn")
	defer logger.Sync()

	if *list {
		fmt.Println(strings.Join(units.Known(), " "))
		return
	}

	got, err := units.Convert(*value, *from, *to)
	if err != nil {
		logger.Error("Conversion failed",
			zap.String("from", *from),
			zap.String("to", *to),
			zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("%s %s = %s %s\n",
		strconv.FormatFloat(*value, 'g', -1, 64), *from,
		strconv.FormatFloat(got, 'g', -1, 64), *to)
}
