package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"medgraph/internal/bootstrap"
	consultdto "medgraph/internal/modules/consultation/dto"
)

func newConsultCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "consult <patient>",
		Short: "Assemble a patient's consultation record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				rec, err := app.ConsultCLI.Consult(ctx, args[0])
				if err != nil {
					return err
				}
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				printRecord(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
}

func newVitalsCmd(flags *globalFlags) *cobra.Command {
	var in consultdto.VitalsInput
	vitals := &cobra.Command{
		Use:   "vitals <patient>",
		Short: "Record vital signs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Patient = args[0]
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ConsultCLI.RecordVitals(ctx, in)
				return printMutation(cmd.OutOrStdout(), out, err)
			})
		},
	}
	vitals.Flags().StringVar(&in.BloodPressure, "bp", "", "blood pressure, e.g. 120/80")
	vitals.Flags().StringVar(&in.HeartRate, "hr", "", "heart rate (bpm)")
	vitals.Flags().StringVar(&in.Temperature, "temp", "", "temperature")
	vitals.Flags().StringVar(&in.Weight, "weight", "", "weight (kg)")
	vitals.Flags().StringVar(&in.Height, "height", "", "height (cm)")
	vitals.Flags().StringVar(&in.Notes, "notes", "", "notes")
	return vitals
}

func newDiagnoseCmd(flags *globalFlags) *cobra.Command {
	var in consultdto.DiagnosisInput
	diagnose := &cobra.Command{
		Use:   "diagnose <patient> <disease>",
		Short: "Add a diagnosis",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Patient, in.Disease = args[0], args[1]
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ConsultCLI.Diagnose(ctx, in)
				return printMutation(cmd.OutOrStdout(), out, err)
			})
		},
	}
	diagnose.Flags().StringVar(&in.Severity, "severity", "", "mild|moderate|severe (default moderate)")
	diagnose.Flags().StringVar(&in.Doctor, "doctor", "", "attending doctor (default from config)")
	diagnose.Flags().StringVar(&in.Notes, "notes", "", "notes")
	return diagnose
}

func newDiagnosisStatusCmd(flags *globalFlags) *cobra.Command {
	var notes string
	status := &cobra.Command{
		Use:   "diagnosis-status <patient> <disease> <active|resolved|chronic>",
		Short: "Change a diagnosis status",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := consultdto.StatusInput{Patient: args[0], Disease: args[1], Status: args[2], Notes: notes}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ConsultCLI.SetDiagnosisStatus(ctx, in)
				return printMutation(cmd.OutOrStdout(), out, err)
			})
		},
	}
	status.Flags().StringVar(&notes, "notes", "", "notes")
	return status
}

func newPrescribeCmd(flags *globalFlags) *cobra.Command {
	var in consultdto.PrescriptionInput
	prescribe := &cobra.Command{
		Use:   "prescribe <patient>",
		Short: "Add a prescription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Patient = args[0]
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ConsultCLI.Prescribe(ctx, in)
				return printMutation(cmd.OutOrStdout(), out, err)
			})
		},
	}
	prescribe.Flags().StringVar(&in.Medication, "medication", "", "medication name")
	prescribe.Flags().StringVar(&in.Dosage, "dosage", "", "dosage, e.g. 75mg")
	prescribe.Flags().StringVar(&in.Frequency, "frequency", "", "frequency, e.g. twice daily")
	prescribe.Flags().StringVar(&in.Duration, "duration", "", "duration, e.g. 5 days")
	prescribe.Flags().StringVar(&in.Doctor, "doctor", "", "prescribing doctor (default from config)")
	prescribe.Flags().StringVar(&in.Notes, "notes", "", "notes")
	return prescribe
}

func newTrackerCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tracker <disease>",
		Short: "List patients with an active diagnosis and the severity split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ConsultCLI.Tracker(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if flags.asJSON {
					return writeJSON(w, out)
				}
				_, _ = fmt.Fprintf(w, "%s: mild %.1f%%  moderate %.1f%%  severe %.1f%%\n",
					out.Disease, out.Mild, out.Moderate, out.Severe)
				for _, p := range out.Patients {
					_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", p.Patient, p.Age, p.Severity, p.DiagnosedDate, p.Doctor)
				}
				return nil
			})
		},
	}
}

// ─── output ──────────────────────────────────────────────────────────────────

func printMutation(w io.Writer, out consultdto.MutationOutput, err error) error {
	if out.Message != "" {
		_, _ = fmt.Fprintln(w, out.Message)
	}
	return err
}

func printRecord(w io.Writer, rec consultdto.RecordOutput) {
	_, _ = fmt.Fprintf(w, "%s  %s (age %d)\n", rec.DisplayID, rec.Patient.Name, rec.Patient.Age)

	_, _ = fmt.Fprintln(w, "\nActive diagnoses:")
	if len(rec.ActiveDiagnoses) == 0 {
		_, _ = fmt.Fprintln(w, "  none")
	}
	for _, d := range rec.ActiveDiagnoses {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", d.Disease, d.Severity, d.Date, d.Doctor)
	}

	_, _ = fmt.Fprintln(w, "\nVital signs:")
	if len(rec.Vitals) == 0 {
		_, _ = fmt.Fprintln(w, "  none")
	}
	for _, v := range rec.Vitals {
		line := fmt.Sprintf("  %s\tBP %s\tHR %s\tT %s\tW %s\tH %s", v.RecordedAt, v.BloodPressure, v.HeartRate, v.Temperature, v.Weight, v.Height)
		if v.BMI != "" {
			line += "\tBMI " + v.BMI
		}
		_, _ = fmt.Fprintln(w, line)
	}

	_, _ = fmt.Fprintln(w, "\nActive prescriptions:")
	if len(rec.ActivePrescriptions) == 0 {
		_, _ = fmt.Fprintln(w, "  none")
	}
	for _, p := range rec.ActivePrescriptions {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", p.Medication, p.Dosage, p.Frequency, p.Duration)
	}

	if len(rec.History) > 0 {
		_, _ = fmt.Fprintln(w, "\nHistory:")
		for _, h := range rec.History {
			state := "ongoing"
			if h.Resolved {
				state = "resolved"
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", h.Condition, h.DateDiagnosed, state)
		}
	}
}

// printMetrics dumps the counters this invocation touched.
func printMetrics(w io.Writer, app *bootstrap.App) error {
	families, err := app.Metrics.Gatherer().Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil || m.GetCounter().GetValue() == 0 {
				continue
			}
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s}\t%.0f", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		_, _ = fmt.Fprintln(w, l)
	}
	return nil
}
