package testvector

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/basturkme/4IER-HMI/internal/errors"
)

// DefaultOutput is the file name the firmware includes.
const DefaultOutput = "test_vectors.h"

// WriteHeader writes v as a C header:
//
//	const int TEST_DATA_LEN = 200;
//	const int TEST_CHANNELS = 4;
//	const float test_data[200][4] = { {...}, ... };
//	const int test_labels[200] = { ... };   (with opts.Labels)
//
// The output depends only on v and opts.
func WriteHeader(w io.Writer, v *Vector, opts Options) error {
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, "#ifndef TEST_VECTORS_H\n#define TEST_VECTORS_H\n\n")
	fmt.Fprintf(bw, "const int TEST_DATA_LEN = %d;\n", v.Len())
	fmt.Fprintf(bw, "const int TEST_CHANNELS = %d;\n\n", v.Channels)

	fmt.Fprintf(bw, "const float test_data[%d][%d] = {\n", v.Len(), v.Channels)
	for _, row := range v.Rows {
		bw.WriteString("    {")
		for i, x := range row {
			if i > 0 {
				bw.WriteString(", ")
			}
			bw.WriteString(strconv.FormatFloat(x, 'f', opts.Decimals, 64))
		}
		bw.WriteString("},\n")
	}
	bw.WriteString("};\n\n")

	if opts.Labels {
		fmt.Fprintf(bw, "const int test_labels[%d] = {\n", len(v.Labels))
		for i, l := range v.Labels {
			if i > 0 {
				bw.WriteString(", ")
			}
			bw.WriteString(strconv.Itoa(l))
		}
		bw.WriteString("\n};\n\n")
	}

	bw.WriteString("#endif\n")

	if err := bw.Flush(); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			"Couldn't write the test vector header", "")
	}
	return nil
}
