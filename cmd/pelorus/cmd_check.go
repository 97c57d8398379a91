package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pelorus/internal/nmea"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate NMEA sentences from stdin",
	Long: `Reads sentences line by line from stdin, validates framing and
checksum and reports what each decodes to. Exits non-zero when any
sentence is invalid.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 256), 4096)

	bad := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sent, res := nmea.Parse(line, time.Now().UTC())
		if !res.OK {
			bad++
			kinds := make([]string, 0, len(res.Errors))
			for _, k := range res.Errors {
				kinds = append(kinds, string(k))
			}
			fmt.Printf("BAD  %s  (%s)\n", line, strings.Join(kinds, ", "))
			continue
		}

		fields := nmea.Decode(sent)
		if len(fields) == 0 {
			fmt.Printf("OK   %s  (%s, not decoded)\n", line, sent.Type)
			continue
		}
		decoded := make([]string, 0, len(fields))
		for _, f := range fields {
			decoded = append(decoded, fmt.Sprintf("%s=%g", f.Path(), f.Value))
		}
		fmt.Printf("OK   %s  (%s: %s)\n", line, sent.Type, strings.Join(decoded, " "))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if bad > 0 {
		return fmt.Errorf("%d invalid sentence(s)", bad)
	}
	return nil
}
