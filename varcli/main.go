package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/varfont"
	"github.com/npillmayer/varfont/otcff"
	"github.com/npillmayer/varfont/otinstance"
	"github.com/npillmayer/varfont/otvar"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.varcli'
func tracer() tracing.Trace {
	return tracing.Select("font.varcli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.font.varcli":  "Info",
		"trace.font.varfont": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Variable font to load")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the font variations CLI")
	//
	// set up REPL
	repl, err := readline.New("var > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if err := intp.loadFont(*fontname); err != nil { // font name provided by flag
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D")
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font *varfont.ScalableFont
	repl *readline.Instance
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "()"
	}
	axes := intp.font.Axes()
	tags := make([]string, len(axes))
	for i, a := range axes {
		tags[i] = a.Tag.String()
	}
	return fmt.Sprintf("( font=%s axes=%s )", intp.font.Fontname, strings.Join(tags, ","))
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code int
	arg  string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	TABLES
	AXES
	INSTANCES
	NORMALIZE
	INSTANCE
	GENERATE
	BATCH
	VALIDATE
	OPTIMIZE
)

var opMap = map[string]int{
	"quit":      QUIT,
	"help":      HELP,
	"tables":    TABLES,
	"axes":      AXES,
	"instances": INSTANCES,
	"normalize": NORMALIZE,
	"instance":  INSTANCE,
	"generate":  GENERATE,
	"batch":     BATCH,
	"validate":  VALIDATE,
	"optimize":  OPTIMIZE,
}

var opNames = []string{
	"quit",
	"help",
	"tables",
	"axes",
	"instances",
	"normalize",
	"instance",
	"generate",
	"batch",
	"validate",
	"optimize",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
	}
}

func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	steps := strings.Split(line, " ")
	command.count = len(steps)
	for i, step := range steps {
		// e.g.  "normalize:wght=700,wdth=100" or "instance:0" or "help:batch"
		c := strings.SplitN(step, ":", 2)
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		if code == QUIT {
			return &command, nil
		}
		if len(c) > 1 {
			command.op[i].arg = c[1]
			tracer().Infof("%s: with argument '%s'", opNames[code], c[1])
		} else {
			tracer().Infof("%s", opNames[code])
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:      quitOp,
	HELP:      helpOp,
	TABLES:    tablesOp,
	AXES:      axesOp,
	INSTANCES: instancesOp,
	NORMALIZE: normalizeOp,
	INSTANCE:  instanceOp,
	GENERATE:  generateOp,
	BATCH:     batchOp,
	VALIDATE:  validateOp,
	OPTIMIZE:  optimizeOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op)
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Variation commands -----------------------------------------------

func normalizeOp(intp *Intp, op *Op) (error, bool) {
	coords, err := parseCoords(op.arg)
	if err != nil {
		return err, false
	}
	normalized := intp.font.Normalize(coords)
	printCoords(coords, normalized)
	return nil, false
}

func instanceOp(intp *Intp, op *Op) (error, bool) {
	index, err := strconv.Atoi(op.arg)
	if err != nil {
		return fmt.Errorf("instance needs an index argument: %v", err), false
	}
	result, err := intp.font.NewGenerator().GenerateNamedInstance(index)
	if err != nil {
		return err, false
	}
	printResult(result)
	return nil, false
}

func generateOp(intp *Intp, op *Op) (error, bool) {
	coords, err := parseCoords(op.arg)
	if err != nil {
		return err, false
	}
	result, err := intp.font.NewGenerator().Generate(coords)
	if err != nil {
		return err, false
	}
	printResult(result)
	return nil, false
}

func batchOp(intp *Intp, op *Op) (error, bool) {
	locations, err := parseBatchArg(op.arg)
	if err != nil {
		return err, false
	}
	batch := &otinstance.BatchGenerator{
		Instancer: intp.font.NewGenerator(),
		Cache:     otinstance.NewThreadSafeCache(64, 0),
		Progress: func(completed, total int) {
			pterm.Printf("generated %d/%d\n", completed, total)
		},
	}
	results := batch.GenerateBatch(locations)
	printBatch(locations, results)
	return nil, false
}

func validateOp(intp *Intp, op *Op) (error, bool) {
	printReport(intp.font.Validate())
	return nil, false
}

func optimizeOp(intp *Intp, op *Op) (error, bool) {
	if intp.font.Variations == nil || intp.font.Variations.CFF2 == nil {
		return errors.New("font has no CFF2 program to optimize"), false
	}
	report, err := otcff.Optimize(intp.font.Variations.CFF2, otcff.DefaultOptimizerOptions())
	if err != nil {
		return err, false
	}
	printOptimizerReport(report)
	return nil, false
}

// parseCoords decodes "wght=700,wdth=100" into user coordinates.
func parseCoords(arg string) (otvar.UserCoords, error) {
	if arg == "" {
		return nil, errors.New("expected coordinates like wght=700,wdth=100")
	}
	coords := make(otvar.UserCoords)
	for _, part := range strings.Split(arg, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || len(kv[0]) == 0 || len(kv[0]) > 4 {
			return nil, fmt.Errorf("cannot parse coordinate '%s'", part)
		}
		value, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse coordinate '%s': %v", part, err)
		}
		coords[otvar.T(kv[0])] = value
	}
	return coords, nil
}

// parseBatchArg decodes "wght=100;wght=400;wght=700" into locations.
func parseBatchArg(arg string) ([]otvar.UserCoords, error) {
	if arg == "" {
		return nil, errors.New("expected locations like wght=100;wght=400")
	}
	var locations []otvar.UserCoords
	for _, loc := range strings.Split(arg, ";") {
		coords, err := parseCoords(loc)
		if err != nil {
			return nil, err
		}
		locations = append(locations, coords)
	}
	return locations, nil
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string) (err error) {
	if fontname == "" {
		return errors.New("no font given, use -font <path>")
	}
	intp.font, err = varfont.LoadVariableFont(fontname)
	if err != nil {
		tracer().Errorf("cannot load font %s: %s", fontname, err)
		return err
	}
	tracer().Infof("loaded font = %s", intp.font.Fontname)
	if !intp.font.IsVariable() {
		pterm.Info.Println("font is static, variation commands will not work")
	}
	return nil
}
