package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ariebrainware/clinic-reservation/booking"
	"github.com/ariebrainware/clinic-reservation/slot"
	"github.com/spf13/cobra"
)

var (
	slotsDoctor    string
	slotsDate      string
	slotsItems     string
	slotsVisitType string
)

const slotsExample = `  clinic-reservation slots --doctor dr-kim --date 2025-01-15 --items "acupuncture, chuna"
  clinic-reservation slots --doctor dr-kim --date 2025-01-15 --items "chuna+herbal follow-up (visit)" --type repeat`

var slotsCmd = &cobra.Command{
	Use:     "slots",
	Short:   "Print a doctor's bucket availability for a day",
	Example: slotsExample,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, catalog, err := openStore()
		if err != nil {
			return err
		}
		svc, err := newService(db, catalog)
		if err != nil {
			return err
		}
		day, units, err := svc.DayAvailability(cmd.Context(), booking.PreviewRequest{
			Doctor:    slotsDoctor,
			Items:     slot.ParseItems(slotsItems),
			VisitType: slotsVisitType,
			Date:      slotsDate,
		})
		if err != nil {
			return err
		}
		return printAvailability(cmd.OutOrStdout(), slotsDoctor, slotsDate, units, day)
	},
}

func init() {
	slotsCmd.Flags().StringVar(&slotsDoctor, "doctor", "", "doctor name")
	slotsCmd.Flags().StringVar(&slotsDate, "date", "", "date (YYYY-MM-DD)")
	slotsCmd.Flags().StringVar(&slotsItems, "items", "", "treatment items, separated by commas or plus signs")
	slotsCmd.Flags().StringVar(&slotsVisitType, "type", "", "visit type")
	_ = slotsCmd.MarkFlagRequired("doctor")
	_ = slotsCmd.MarkFlagRequired("date")
	_ = slotsCmd.MarkFlagRequired("items")
	rootCmd.AddCommand(slotsCmd)
}

func printAvailability(out io.Writer, doctor, date string, units int, day []slot.BucketAvailability) error {
	fmt.Fprintf(out, "%s on %s, %d unit(s) requested\n", doctor, date, units)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tUSED\tFREE\tBOOKABLE\tSPILL")
	for _, b := range day {
		spill := ""
		if b.Overflow > 0 {
			spill = fmt.Sprintf("+%d next", b.Overflow)
		}
		mark := "no"
		if b.Bookable {
			mark = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", b.Time, strings.Repeat("#", b.Used), b.Remaining, mark, spill)
	}
	return w.Flush()
}
