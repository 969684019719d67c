package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/c-bata/go-prompt"
	"go.uber.org/zap"
	"golang.org/x/term"

	"dfsfetch/blocks"
	"dfsfetch/config"
	"dfsfetch/ftps"
	"dfsfetch/gis"
	"dfsfetch/indexgrid"
	"dfsfetch/logging"
	"dfsfetch/provider"
	"dfsfetch/terminal"
)

// app holds the shared state of one program run: configuration, logger,
// terminal components, the layer project and the loaded selection source.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	theme   *terminal.ThemeManager
	tables  *terminal.TableFormatter
	project *gis.Project
	source  *gis.GeoJSONSource
}

// Fields implements terminal.FieldProvider for shell completion.
func (a *app) Fields() []string {
	if a.source == nil {
		return nil
	}
	return a.source.Fields()
}

// HasSource implements terminal.FieldProvider.
func (a *app) HasSource() bool {
	return a.source != nil
}

// dialFTPS adapts the session package to the downloader's Dialer.
func (a *app) dialFTPS(username, password string) (blocks.Session, error) {
	return ftps.Dial(ftps.Config{
		Host:    a.cfg.FTPHost,
		Port:    a.cfg.FTPPort,
		Timeout: a.cfg.DialTimeout,
	}, username, password)
}

// promptCredentials fills in missing credentials interactively. The password
// is read without echo when stdin is a terminal.
func (a *app) promptCredentials(username, password string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Print("Password: ")
		if term.IsTerminal(int(os.Stdin.Fd())) {
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return "", "", fmt.Errorf("failed to read password: %w", err)
			}
			password = string(raw)
		} else {
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", "", fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}
	}
	return username, password, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	themeManager, err := terminal.NewThemeManager()
	if err != nil {
		fmt.Printf("Warning: Failed to initialize theme manager: %v\n", err)
		themeManager = nil
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		theme:   themeManager,
		tables:  terminal.NewTableFormatter(),
		project: gis.NewProject(),
	}

	prov := provider.New(
		"dataforsyningen",
		"Dataforsyningen Processing",
		"Collection of scripts for downloading and processing files from dataforsyningen.dk",
	)
	prov.Add(&downloadAlgorithm{app: a})
	prov.Add(&loadIndexAlgorithm{app: a})

	args := os.Args[1:]
	if len(args) == 0 {
		usage(prov)
		os.Exit(2)
	}

	switch args[0] {
	case "list":
		listAlgorithms(a, prov)
	case "shell":
		runShell(a, prov)
	case "help", "-h", "--help":
		usage(prov)
	default:
		alg, ok := prov.Lookup(aliases(args[0]))
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", args[0])
			usage(prov)
			os.Exit(2)
		}
		if err := alg.Run(args[1:]); err != nil {
			if a.theme != nil {
				a.theme.GetErrorColor().Printf("Error: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}
	}
}

// aliases maps short command names onto registry names.
func aliases(cmd string) string {
	switch cmd {
	case "download":
		return "download_blocks"
	case "loadindex":
		return "load_index_grid"
	}
	return cmd
}

func usage(prov *provider.Provider) {
	fmt.Printf("%s - %s\n\n", prov.Name(), prov.LongName())
	fmt.Println("Usage: dfsfetch <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, alg := range prov.Algorithms() {
		fmt.Printf("  %-18s %s\n", alg.Name(), alg.DisplayName())
	}
	fmt.Printf("  %-18s %s\n", "list", "List registered algorithms")
	fmt.Printf("  %-18s %s\n", "shell", "Start the interactive shell")
	fmt.Println()
	fmt.Println("Run 'dfsfetch <command> -h' for command flags.")
}

func listAlgorithms(a *app, prov *provider.Provider) {
	fmt.Printf("Provider: %s (%s)\n\n", prov.Name(), prov.ID())
	var rows []terminal.AlgorithmInfo
	for _, alg := range prov.Algorithms() {
		rows = append(rows, terminal.AlgorithmInfo{
			Name:        alg.Name(),
			DisplayName: alg.DisplayName(),
			Group:       alg.Group(),
		})
	}
	a.tables.FormatAlgorithms(rows)
}

// downloadAlgorithm downloads block files for the selected features.
type downloadAlgorithm struct {
	app *app
}

func (d *downloadAlgorithm) Name() string        { return "download_blocks" }
func (d *downloadAlgorithm) DisplayName() string { return "Download Block Files from Dataforsyningen" }
func (d *downloadAlgorithm) Group() string       { return "Dataforsyningen processing" }
func (d *downloadAlgorithm) ShortHelp() string {
	return "Downloads selected block files (DTM, DSM or point clouds) from the Dataforsyningen " +
		"FTPS archive based on a grid-ID attribute. The password is accepted in clear text " +
		"and may be surfaced by logging channels outside this tool."
}

func (d *downloadAlgorithm) Run(args []string) error {
	fs := flag.NewFlagSet(d.Name(), flag.ContinueOnError)
	var (
		source   = fs.String("source", "", "GeoJSON file providing the selected features (required)")
		ids      = fs.String("ids", "", "Comma-separated feature IDs to select (default: all features)")
		category = fs.String("category", "", "Block category: terrain-model/dtm, surface-model/dsm, point-cloud (required)")
		field    = fs.String("field", "", "Attribute field containing the grid ID, e.g. 605_64 (required)")
		username = fs.String("username", d.app.cfg.Username, "FTP username (create at https://dataforsyningen.dk/)")
		password = fs.String("password", d.app.cfg.Password, "FTP password (clear text; prompted when omitted on a terminal)")
		outDir   = fs.String("out", "", "Output folder, must exist (required)")
		unpack   = fs.Bool("unpack", false, "Automatically unpack .zip files")
		report   = fs.String("report", "", "Append a CSV download report to this file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *source == "" {
		return fmt.Errorf("a -source GeoJSON file is required")
	}
	src, err := gis.OpenGeoJSON(*source)
	if err != nil {
		return err
	}
	if *ids != "" {
		src.Select(strings.Split(*ids, ","))
	}

	cat, err := blocks.ParseCategory(*category)
	if err != nil {
		return err
	}

	user, pass := *username, *password
	if user == "" || pass == "" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			user, pass, err = d.app.promptCredentials(user, pass)
			if err != nil {
				return err
			}
		}
	}

	var fb blocks.Feedback
	if d.app.theme != nil {
		fb = terminal.NewConsoleFeedback(d.app.theme)
	}

	dl := blocks.Downloader{
		Dial:     d.app.dialFTPS,
		Feedback: fb,
		Log:      d.app.log,
		Progress: term.IsTerminal(int(os.Stdout.Fd())),
	}
	count, err := dl.Run(src, blocks.Request{
		Category:   cat,
		Field:      *field,
		Username:   user,
		Password:   pass,
		OutputDir:  *outDir,
		Unpack:     *unpack,
		ReportPath: *report,
	})
	if err != nil {
		return err
	}

	if d.app.theme != nil {
		d.app.theme.GetSuccessColor().Printf("%d files downloaded to %s\n", count, *outDir)
	} else {
		fmt.Printf("%d files downloaded to %s\n", count, *outDir)
	}
	return nil
}

// loadIndexAlgorithm loads the 10 km reference index grid into the project.
type loadIndexAlgorithm struct {
	app *app
}

func (l *loadIndexAlgorithm) Name() string        { return "load_index_grid" }
func (l *loadIndexAlgorithm) DisplayName() string { return "Load 10 km index grid" }
func (l *loadIndexAlgorithm) Group() string       { return "Dataforsyningen processing" }
func (l *loadIndexAlgorithm) ShortHelp() string {
	return "Loads the 10 km index grid covering the Danish landmass and styles it with a hatched fill."
}

func (l *loadIndexAlgorithm) Run(args []string) error {
	fs := flag.NewFlagSet(l.Name(), flag.ContinueOnError)
	url := fs.String("url", indexgrid.DefaultURL, "URL of the GeoJSON index file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loader := indexgrid.Loader{Log: l.app.log}
	layer, err := loader.Load(*url, l.app.project)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("GeoJSON loaded: %s (%d features, %d symbol layers)",
		layer.Name(), layer.FeatureCount(), len(layer.Renderer().Layers()))
	if l.app.theme != nil {
		l.app.theme.GetSuccessColor().Println(msg)
	} else {
		fmt.Println(msg)
	}
	return nil
}

// runShell starts the interactive prompt.
func runShell(a *app, prov *provider.Provider) {
	completer := terminal.NewCommandCompleter()
	completer.SetFieldProvider(a)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		fmt.Printf("\nReceived signal: %v. Exiting...\n", sig)
		os.Exit(0)
	}()

	if a.theme != nil {
		a.theme.GetPromptColor().Println("Welcome to the dfsfetch shell")
		a.theme.GetTextColor().Println("Type 'help' for available commands")
	} else {
		fmt.Println("Welcome to the dfsfetch shell")
	}
	fmt.Println()

	p := prompt.New(
		func(input string) { shellExecutor(a, prov, input) },
		completer.Completer,
		prompt.OptionTitle("dfsfetch shell"),
		prompt.OptionLivePrefix(func() (string, bool) {
			if a.source != nil {
				return "[" + a.source.Name() + "]> ", true
			}
			return "> ", true
		}),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
		prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionCompletionWordSeparator(" "),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(buf *prompt.Buffer) {
				fmt.Println("\nExiting...")
				os.Exit(0)
			},
		}),
	)
	p.Run()
}

func shellExecutor(a *app, prov *provider.Provider, input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	parts := strings.Fields(input)
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	fail := func(err error) {
		if a.theme != nil {
			a.theme.GetErrorColor().Printf("Error: %v\n", err)
		} else {
			fmt.Printf("Error: %v\n", err)
		}
	}

	switch cmd {
	case "exit", "quit":
		os.Exit(0)
	case "help":
		shellHelp(a)
	case "use":
		if len(args) != 1 {
			fmt.Println("Usage: use <file.geojson>")
			return
		}
		src, err := gis.OpenGeoJSON(args[0])
		if err != nil {
			fail(err)
			return
		}
		a.source = src
		features, _ := src.SelectedFeatures()
		fmt.Printf("Loaded %s: %d features, %d fields\n", src.Name(), len(features), len(src.Fields()))
	case "select":
		if a.source == nil {
			fmt.Println("No source loaded. Use 'use <file.geojson>' first.")
			return
		}
		a.source.Select(args)
		features, _ := a.source.SelectedFeatures()
		fmt.Printf("%d features selected\n", len(features))
	case "fields":
		if a.source == nil {
			fmt.Println("No source loaded. Use 'use <file.geojson>' first.")
			return
		}
		a.tables.FormatFields(a.source.Fields())
	case "download":
		if a.source == nil {
			fmt.Println("No source loaded. Use 'use <file.geojson>' first.")
			return
		}
		if len(args) < 3 {
			fmt.Println("Usage: download <category> <field> <outdir> [unpack]")
			return
		}
		cat, err := blocks.ParseCategory(args[0])
		if err != nil {
			fail(err)
			return
		}
		user, pass, err := a.promptCredentials(a.cfg.Username, a.cfg.Password)
		if err != nil {
			fail(err)
			return
		}
		var fb blocks.Feedback
		if a.theme != nil {
			fb = terminal.NewConsoleFeedback(a.theme)
		}
		var results []terminal.DownloadResult
		dl := blocks.Downloader{
			Dial:     a.dialFTPS,
			Feedback: fb,
			Log:      a.log,
			Progress: true,
			OnResult: func(rec blocks.ReportRecord) {
				results = append(results, terminal.DownloadResult{
					GridID:   rec.GridID,
					FileName: rec.FileName,
					Bytes:    rec.Bytes,
					Duration: rec.Duration,
					Status:   rec.Status,
				})
			},
		}
		count, err := dl.Run(a.source, blocks.Request{
			Category:  cat,
			Field:     args[1],
			Username:  user,
			Password:  pass,
			OutputDir: args[2],
			Unpack:    len(args) > 3 && strings.EqualFold(args[3], "unpack"),
		})
		if err != nil {
			fail(err)
			return
		}
		a.tables.FormatResults(results)
		fmt.Printf("%d files downloaded\n", count)
	case "loadindex":
		url := indexgrid.DefaultURL
		if len(args) > 0 {
			url = args[0]
		}
		loader := indexgrid.Loader{Log: a.log}
		layer, err := loader.Load(url, a.project)
		if err != nil {
			fail(err)
			return
		}
		fmt.Printf("GeoJSON loaded: %s (%d features, %d symbol layers)\n",
			layer.Name(), layer.FeatureCount(), len(layer.Renderer().Layers()))
	case "layers":
		layers := a.project.MapLayers()
		if len(layers) == 0 {
			fmt.Println("Project has no layers")
			return
		}
		for i, l := range layers {
			fmt.Printf("%d. %s (%d features)\n", i+1, l.Name(), l.FeatureCount())
		}
	case "theme":
		if a.theme == nil {
			fmt.Println("Theme manager unavailable")
			return
		}
		if len(args) == 0 {
			a.theme.GetTextColor().Printf("Current theme: %s\n", a.theme.GetThemeName())
			a.theme.GetTextColor().Println("Available themes: light, dark")
			return
		}
		if err := a.theme.SetTheme(args[0]); err != nil {
			fail(err)
			return
		}
		a.theme.GetSuccessColor().Printf("Theme set to: %s\n", args[0])
	default:
		fmt.Printf("Unknown command %q. Type 'help' for available commands.\n", cmd)
	}
}

func shellHelp(a *app) {
	out := fmt.Println
	if a.theme != nil {
		out = func(args ...interface{}) (int, error) {
			return a.theme.GetTextColor().Println(args...)
		}
	}
	out("\nCommands:")
	out("use <file.geojson> - Load a GeoJSON file as the selection source")
	out("select [id ...] - Limit the selection to feature IDs (no args: select all)")
	out("fields - List attribute fields of the loaded source")
	out("download <category> <field> <outdir> [unpack] - Download block files")
	out("loadindex [url] - Load the 10 km index grid into the project")
	out("layers - List layers in the project")
	out("theme [light|dark] - Show or change the terminal theme")
	out("exit - Leave the shell")
}
