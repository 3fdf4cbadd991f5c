// Command hairfit is the operator console for the hairstyle synthesis
// workflow: pick a client photo and a style, synthesize, then save to history.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"hairfit/internal/domain"
	"hairfit/internal/hairfitapi"
	"hairfit/internal/infra"
	"hairfit/internal/workflow"
)

const usage = `usage: hairfit <command> [flags]

commands:
  styles   [-gender all|male|female] [-tag t]   list the style catalog
  members                                       list members with a photo
  synth    (-member id | -photo file) [-style id] [-gender g] [-tag t] [-out file] [-save]
  history                                       list saved syntheses
  show     <id>                                 show one history entry
  delete   <id>                                 delete one history entry
  export   [-o file.zip] [-member id]           archive history images and records`

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadClientConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, &logger, os.Args[1:], os.Stdout); err != nil {
		if kind := domain.KindOf(err); kind != domain.KindInternal {
			exitWithError(fmt.Errorf("%s: %w", kind, err))
		}
		exitWithError(err)
	}
}

func run(ctx context.Context, cfg *infra.ClientConfig, logger *infra.Logger, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	policy, err := workflow.ParseForeignOriginalPolicy(cfg.ForeignOriginalPolicy)
	if err != nil {
		return err
	}
	client := hairfitapi.NewClient(hairfitapi.Options{
		BaseURL:        cfg.APIBaseURL,
		Token:          cfg.APIToken,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})
	wf, err := workflow.New(workflow.Deps{
		Members:   client,
		Styles:    client,
		Photos:    client,
		Synth:     client,
		Uploader:  client,
		History:   client,
		AssetBase: cfg.AssetBaseURL,
	}, workflow.Options{
		SynthesisTimeout: cfg.SynthesisTimeout,
		ForeignPolicy:    policy,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "styles":
		return runStyles(ctx, wf, rest, stdout)
	case "members":
		members, err := wf.Members(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, members)
	case "synth":
		return runSynth(ctx, wf, rest, stdout)
	case "history":
		recs, err := wf.History(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, recs)
	case "show":
		id, err := singleID(cmd, rest)
		if err != nil {
			return err
		}
		rec, err := wf.HistoryItem(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(stdout, rec)
	case "delete":
		id, err := singleID(cmd, rest)
		if err != nil {
			return err
		}
		if err := wf.DeleteHistory(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %s\n", id)
		return nil
	case "export":
		return runExport(ctx, wf, client, cfg.AssetBaseURL, rest, stdout)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func runStyles(ctx context.Context, wf *workflow.Workflow, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("styles", flag.ContinueOnError)
	gender := fs.String("gender", "all", "gender filter")
	tag := fs.String("tag", "", "tag filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := wf.LoadStyles(ctx); err != nil {
		return err
	}
	return printJSON(stdout, wf.SetFilter(workflow.ParseGenderFilter(*gender), *tag))
}

type synthOutput struct {
	State     workflow.State        `json:"state"`
	MemberID  string                `json:"member_id,omitempty"`
	StyleID   string                `json:"style_id"`
	Degraded  bool                  `json:"degraded,omitempty"`
	ResultOut string                `json:"result_file,omitempty"`
	Saved     *domain.HistoryRecord `json:"saved,omitempty"`
}

func runSynth(ctx context.Context, wf *workflow.Workflow, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("synth", flag.ContinueOnError)
	memberID := fs.String("member", "", "member id whose photo to use")
	photo := fs.String("photo", "", "local image file to use")
	styleID := fs.String("style", "", "style id (defaults to the first matching style)")
	gender := fs.String("gender", "all", "gender filter")
	tag := fs.String("tag", "", "tag filter")
	out := fs.String("out", "", "write the result image to this file")
	save := fs.Bool("save", false, "save the result to history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*memberID == "") == (*photo == "") {
		return errors.New("synth: exactly one of -member or -photo is required")
	}

	if _, err := wf.LoadStyles(ctx); err != nil {
		return err
	}
	wf.SetFilter(workflow.ParseGenderFilter(*gender), *tag)
	if s := strings.TrimSpace(*styleID); s != "" {
		if _, err := wf.ChooseStyle(s); err != nil {
			return err
		}
	}

	var src workflow.Source
	var err error
	if *memberID != "" {
		src, err = wf.ChooseMember(ctx, *memberID)
	} else {
		src, err = chooseFile(wf, *photo)
	}
	if err != nil {
		return err
	}
	if src.Degraded {
		return fmt.Errorf("%w: member %s photo could not be downloaded", domain.ErrNotReady, src.MemberID)
	}

	if err := wf.Submit(ctx); err != nil {
		return err
	}
	snap := wf.Snapshot()
	res := synthOutput{State: snap.State, MemberID: snap.MemberID}
	if snap.Style != nil {
		res.StyleID = snap.Style.ID
	}

	if *out != "" {
		bin, err := domain.DecodeDataURI(snap.ResultBase64)
		if err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
		if err := os.WriteFile(*out, bin.Data, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		res.ResultOut = *out
	}
	if *save {
		rec, err := wf.Save(ctx)
		if err != nil {
			return err
		}
		normalized := workflow.Normalize(*rec)
		res.Saved = &normalized
	}
	return printJSON(stdout, res)
}

func chooseFile(wf *workflow.Workflow, name string) (workflow.Source, error) {
	f, err := os.Open(name)
	if err != nil {
		return workflow.Source{}, err
	}
	defer f.Close()
	return wf.ChooseSourceReader(f)
}

func singleID(cmd string, args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%s: expected exactly one id", cmd)
	}
	return strings.TrimSpace(args[0]), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
