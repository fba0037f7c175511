package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"campaignetl/internal/archive"
	"campaignetl/internal/bundletest"
	"campaignetl/internal/config"
	"campaignetl/internal/storage"
	"campaignetl/internal/storage/sqlite"
)

const header = "age,job,marital,education,default,housing,day,month,duration,campaign,pdays,poutcome,y,cons.price.idx,euribor3m\n"

const bankA = header +
	"58,admin.,married,university.degree,no,yes,5,may,261,1,999,nonexistent,no,93.994,4.857\n" +
	"44,blue-collar,single,unknown,unknown,no,13,jun,151,2,999,success,yes,94.465,4.961\n"

const bankB = header +
	"33,entrepreneur,married,basic.9y,yes,no,31,aug,76,3,6,failure,no,93.2,1.313\n"

// testConfig returns defaults pointed at fresh temp directories.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	c := config.Default()
	c.InputDir = filepath.Join(t.TempDir(), "input")
	c.OutputDir = filepath.Join(t.TempDir(), "output")
	if err := os.MkdirAll(c.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return c
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name+".csv"))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(b)
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	bundletest.CSV(t, cfg.InputDir, "bank_a", bankA)
	bundletest.CSV(t, cfg.InputDir, "bank_b", bankB)

	res, err := New(cfg, nil, WithRunID("run-1")).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]string{
		"client": "client_id,age,job,marital,education,credit_default,mortgage\n" +
			"0,58,admin,married,university_degree,0,1\n" +
			"1,44,blue_collar,single,,0,0\n" +
			"2,33,entrepreneur,married,basic_9y,1,0\n",
		"campaign": "client_id,number_contacts,contact_duration,previous_campaign_contacts,previous_outcome,campaign_outcome,last_contact_date\n" +
			"0,1,261,999,0,0,2022-05-05\n" +
			"1,2,151,999,1,1,2022-06-13\n" +
			"2,3,76,6,0,0,2022-08-31\n",
		"economics": "client_id,cons_price_idx,euribor_three_months\n" +
			"0,93.994,4.857\n" +
			"1,94.465,4.961\n" +
			"2,93.2,1.313\n",
	}
	for name, body := range want {
		if diff := cmp.Diff(body, readOutput(t, cfg.OutputDir, name)); diff != "" {
			t.Errorf("%s.csv mismatch (-want +got):\n%s", name, diff)
		}
	}

	if res.RunID != "run-1" {
		t.Fatalf("RunID=%q want run-1", res.RunID)
	}
	if got := res.Read; got != (archive.Stats{Bundles: 2, Entries: 2, Rows: 3}) {
		t.Fatalf("read stats=%+v", got)
	}
	if !res.SynthesizedID {
		t.Fatalf("client_id should be synthesized")
	}
	if len(res.Missing) != 0 {
		t.Fatalf("every canonical field has an alias in the input; missing=%v", res.Missing)
	}
	if len(res.Files) != 3 || len(res.Reports) != 3 {
		t.Fatalf("files=%d reports=%d want 3 and 3", len(res.Files), len(res.Reports))
	}
	if len(res.Loaded) != 0 {
		t.Fatalf("nothing should be loaded when storage is none")
	}
}

func TestRun_ClientIDFromSource(t *testing.T) {
	cfg := testConfig(t)
	bundletest.CSV(t, cfg.InputDir, "ids", "client_id,age,y\n17,30,yes\n42,31,no\n")

	res, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.SynthesizedID {
		t.Fatalf("client_id present in source; should not be synthesized")
	}

	for _, name := range []string{"client", "campaign", "economics"} {
		lines := strings.Split(strings.TrimSpace(readOutput(t, cfg.OutputDir, name)), "\n")[1:]
		var ids []string
		for _, l := range lines {
			ids = append(ids, strings.SplitN(l, ",", 2)[0])
		}
		if diff := cmp.Diff([]string{"17", "42"}, ids); diff != "" {
			t.Errorf("%s ids (-want +got):\n%s", name, diff)
		}
	}
}

func TestRun_DefaultsWhenAliasesAbsent(t *testing.T) {
	cfg := testConfig(t)
	bundletest.CSV(t, cfg.InputDir, "thin", "age\n25\n")

	if _, err := Run(context.Background(), cfg, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]string{
		"client":    "client_id,age,job,marital,education,credit_default,mortgage\n0,25,,,,0,0\n",
		"campaign":  "client_id,number_contacts,contact_duration,previous_campaign_contacts,previous_outcome,campaign_outcome,last_contact_date\n0,1,0,0,0,0,2022-01-01\n",
		"economics": "client_id,cons_price_idx,euribor_three_months\n0,0.0,0.0\n",
	}
	for name, body := range want {
		if diff := cmp.Diff(body, readOutput(t, cfg.OutputDir, name)); diff != "" {
			t.Errorf("%s.csv mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := testConfig(t)
	bundletest.CSV(t, cfg.InputDir, "bank_b", bankB)
	bundletest.CSV(t, cfg.InputDir, "bank_a", bankA)

	first, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	snapshot := map[string][]byte{}
	for _, f := range first.Files {
		b, err := os.ReadFile(f.Path)
		if err != nil {
			t.Fatal(err)
		}
		snapshot[f.Path] = b
	}

	second, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	for i, f := range second.Files {
		if f.Digest != first.Files[i].Digest {
			t.Errorf("%s digest changed: %s -> %s", f.Table, first.Files[i].DigestHex(), f.DigestHex())
		}
		b, err := os.ReadFile(f.Path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(snapshot[f.Path], b) {
			t.Errorf("%s bytes changed between runs", f.Path)
		}
	}
}

func TestRun_NoInput(t *testing.T) {
	cases := map[string]func(t *testing.T, dir string){
		"empty_dir": func(*testing.T, string) {},
		"no_csv_entries": func(t *testing.T, dir string) {
			bundletest.Write(t, dir, "notes.zip", bundletest.Entry{Name: "readme.txt", Body: "hi"})
		},
	}
	for name, seed := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			seed(t, cfg.InputDir)

			_, err := Run(context.Background(), cfg, nil)
			if !errors.Is(err, ErrNoInput) {
				t.Fatalf("err=%v want ErrNoInput", err)
			}
			if _, statErr := os.Stat(cfg.OutputDir); !os.IsNotExist(statErr) {
				t.Fatalf("output dir should not exist, stat err=%v", statErr)
			}
		})
	}
}

func TestRun_BadBundle(t *testing.T) {
	cfg := testConfig(t)
	bundletest.CSV(t, cfg.InputDir, "bank_a", bankA)
	if err := os.WriteFile(filepath.Join(cfg.InputDir, "broken.zip"), []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), cfg, nil)
	var re *archive.ReadError
	if !errors.As(err, &re) {
		t.Fatalf("err=%v want *archive.ReadError", err)
	}
	if !strings.HasSuffix(re.Bundle, "broken.zip") {
		t.Fatalf("ReadError.Bundle=%q want broken.zip", re.Bundle)
	}
	if _, statErr := os.Stat(cfg.OutputDir); !os.IsNotExist(statErr) {
		t.Fatalf("fail-fast run must not write outputs")
	}

	cfg.SkipBadEntries = true
	res, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("skip run: %v", err)
	}
	if res.Read.SkippedBundles != 1 || res.Read.SkippedEntries != 0 || res.Read.Rows != 2 {
		t.Fatalf("read stats=%+v want 1 skipped bundle, 2 rows", res.Read)
	}
}

func TestRun_LoadSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = config.Storage{
		Kind:        "sqlite",
		DSN:         "file:" + filepath.Join(t.TempDir(), "campaign.db"),
		TablePrefix: "bank_",
		PostLoad:    []string{"CREATE INDEX bank_client_id_idx ON {prefix}client (client_id)"},
	}
	bundletest.CSV(t, cfg.InputDir, "bank_a", bankA)
	bundletest.CSV(t, cfg.InputDir, "bank_b", bankB)

	res, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []storage.TableResult{
		{Table: "bank_client", Rows: 3, Batches: 1},
		{Table: "bank_campaign", Rows: 3, Batches: 1},
		{Table: "bank_economics", Rows: 3, Batches: 1},
	}
	if diff := cmp.Diff(want, res.Loaded); diff != "" {
		t.Fatalf("loaded (-want +got):\n%s", diff)
	}

	db, err := sqlite.Open(cfg.Storage.DSN)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var edu *string
	if err := db.QueryRow(`SELECT education FROM bank_client WHERE client_id = '1'`).Scan(&edu); err != nil {
		t.Fatalf("select: %v", err)
	}
	if edu != nil {
		t.Fatalf("missing education should load as NULL, got %q", *edu)
	}

	var idx string
	if err := db.QueryRow(`SELECT tbl_name FROM sqlite_master WHERE type = 'index' AND name = 'bank_client_id_idx'`).Scan(&idx); err != nil {
		t.Fatalf("post-load index missing: %v", err)
	}
	if idx != "bank_client" {
		t.Fatalf("index on %q want bank_client", idx)
	}
}

func TestRun_LoadError(t *testing.T) {
	orig := newRepositoryFn
	t.Cleanup(func() { newRepositoryFn = orig })

	boom := errors.New("connection refused")
	newRepositoryFn = func(context.Context, storage.Config) (storage.Repository, error) { return nil, boom }

	cfg := testConfig(t)
	cfg.Storage = config.Storage{Kind: "postgres", DSN: "postgres://localhost/bank"}
	bundletest.CSV(t, cfg.InputDir, "bank_a", bankA)

	res, err := Run(context.Background(), cfg, nil)
	var le *storage.LoadError
	if !errors.As(err, &le) || !errors.Is(err, boom) {
		t.Fatalf("err=%v want *storage.LoadError wrapping %v", err, boom)
	}
	if len(res.Files) != 3 {
		t.Fatalf("files should be written before the load; got %d", len(res.Files))
	}
}

func TestRun_Canceled(t *testing.T) {
	cfg := testConfig(t)
	bundletest.CSV(t, cfg.InputDir, "bank_a", bankA)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, cfg, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}
