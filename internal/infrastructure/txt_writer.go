package infrastructure

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

type FmtFunc func(float64) string

// FixedFormat formats values with a fixed number of decimals.
func FixedFormat(decimals int) FmtFunc {
	return func(val float64) string {
		return strconv.FormatFloat(val, 'f', decimals, 64)
	}
}

type TXTFileWriter struct {
	logger    *zap.Logger
	formatter FmtFunc
}

func NewTXTFileWriter(logger *zap.Logger, formatter FmtFunc) *TXTFileWriter {
	if formatter == nil {
		formatter = func(val float64) string {
			return strconv.FormatFloat(val, 'g', -1, 64)
		}
	}
	return &TXTFileWriter{logger: logger, formatter: formatter}
}

func (w *TXTFileWriter) WriteImage(filename string, data mat.Matrix) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	writer := bufio.NewWriter(file)

	rows, cols := data.Dims()
	fmt.Fprintf(writer, "# %d x %d\n", rows, cols)

	rowStr := make([]string, cols)
	for i := range rows {
		for j := range cols {
			rowStr[j] = w.formatter(data.At(i, j))
		}
		if _, err := fmt.Fprintln(writer, strings.Join(rowStr, "\t")); err != nil {
			return err
		}
	}

	if err := writer.Flush(); err != nil {
		return err
	}

	w.logger.Debug("Wrote text image", zap.String("file", filename))
	return nil
}
