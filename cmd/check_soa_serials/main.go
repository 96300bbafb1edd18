package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/kdar/factorlog"

	"github.com/theias/check-soa-serials/perfdata"
	"github.com/theias/check-soa-serials/plugin"
	"github.com/theias/check-soa-serials/soa"
	"github.com/theias/check-soa-serials/threshold"
)

//-------------------------------------------------------------------------------------------------------

const (
	// Status line prefix and perfdata metric label.
	checkName  = "SOASERIALS"
	metricName = "zones_not_ok"

	queryTimeout = 5 * time.Second

	// Status message limits, applied before the range hint is appended.
	maxZonesListed  = 5
	maxMessageRunes = 45
)

const logFormat = `[%{Date} %{Time "15:04:05.000"}][%{Severity}][%{ShortFile}:%{Line}] %{Message}`

// Diagnostics go to stderr; stdout carries nothing but the status line.
var log = factorlog.New(os.Stderr, factorlog.NewStdFormatter(logFormat))

// Map the -v count onto the logger's severity window.
func setLogLevel(verbosity int) {
	level := "WARN"
	switch {
	case verbosity >= 2:
		level = "DEBUG"
	case verbosity == 1:
		level = "INFO"
	}
	log.SetMinMaxSeverity(factorlog.StringToSeverity(level), factorlog.StringToSeverity("PANIC"))
}

//-------------------------------------------------------------------------------------------------------

// Command line flags that have been parsed.
type programFlags struct {
	Proto     string   `long:"proto" default:"udp" value-name:"{tcp,udp}" description:"Protocol to use for DNS queries"`
	ZonesFile string   `short:"f" long:"zones-file" value-name:"zones_file" description:"A file from which to pull DNS zones to compare the serials for between DNS hosts (one per line)"`
	Critical  string   `short:"c" long:"critical" default:"0" description:"Critical range for the number of SOA serials that are not OK"`
	Warning   string   `short:"w" long:"warning" default:"0" description:"Warning range for the number of SOA serials that are not OK"`
	Zones     []string `short:"z" long:"zone" value-name:"zone" description:"A zone to compare the serials for between DNS hosts. May be given multiple times"`
	Verbose   []bool   `short:"v" long:"verbose" description:"Set output verbosity (-v=info, -vv=debug)"`
	Args      struct {
		Hosts []string `positional-arg-name:"host" description:"The hosts to compare all the SOA serials between, optionally as host:port"`
	} `positional-args:"yes"`
}

// Program data including configuration and runtime data.
type checkProgram struct {
	programFlags                  // Flags from the command line
	plugin       *plugin.Plugin   // Plugin output state
	parseErr     error            // Flag parsing failure, reported by checkFlags
	servers      []soa.Endpoint   // The two name servers to compare
	zones        []string         // Sorted, deduplicated zone names
	warnRange    *threshold.Range // Warning range for per-zone serial differences
	critRange    *threshold.Range // Critical range for per-zone serial differences
	fetcher      *soa.Fetcher
}

// Parse command line arguments and store their values. If the -h flag is
// present, help will be displayed and the program will exit.
func (program *checkProgram) parseArguments(args []string) {
	parser := flags.NewParser(&program.programFlags, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "check_soa_serials"
	parser.Usage = "[OPTIONS] host host"
	_, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(flagsErr.Message)
			os.Exit(0)
		}
		program.parseErr = err
	}
}

// Initialise the monitoring check program.
func newProgram(args []string) *checkProgram {
	program := &checkProgram{
		plugin: plugin.New(checkName),
	}
	program.parseArguments(args)
	return program
}

// Terminate the monitoring check program.
func (program *checkProgram) close() {
	if r := recover(); r != nil {
		program.plugin.SetState(plugin.UNKNOWN, "Internal error")
		program.plugin.AddLine("Error info: %v", r)
	}
	program.plugin.Done()
}

// Combine zone names from the command line and the zones file into a
// sorted, deduplicated, lowercased list.
func (program *checkProgram) collectZones() ([]string, error) {
	seen := make(map[string]bool)
	for _, zone := range program.Zones {
		seen[strings.ToLower(strings.TrimSpace(zone))] = true
	}
	if program.ZonesFile != "" {
		file, err := os.Open(program.ZonesFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read zones file: %s", err)
		}
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			seen[strings.ToLower(strings.TrimSpace(scanner.Text()))] = true
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("cannot read zones file: %s", err)
		}
	}
	delete(seen, "")
	zones := make([]string, 0, len(seen))
	for zone := range seen {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	return zones, nil
}

// Check and digest the values that were specified from the command line.
// Returns true if the arguments made sense.
func (program *checkProgram) checkFlags() bool {
	if program.parseErr != nil {
		program.plugin.SetState(plugin.UNKNOWN, program.parseErr.Error())
		return false
	}
	setLogLevel(len(program.Verbose))
	if len(program.Args.Hosts) != 2 {
		program.plugin.SetState(plugin.UNKNOWN, "exactly two host arguments are required")
		return false
	}
	program.servers = make([]soa.Endpoint, 0, len(program.Args.Hosts))
	for _, hostSpec := range program.Args.Hosts {
		server, err := soa.ParseEndpoint(strings.ToLower(hostSpec))
		if err != nil {
			program.plugin.SetState(plugin.UNKNOWN, err.Error())
			return false
		}
		program.servers = append(program.servers, server)
	}
	program.Proto = strings.ToLower(program.Proto)
	if program.Proto != "udp" && program.Proto != "tcp" {
		program.plugin.SetState(plugin.UNKNOWN, fmt.Sprintf("invalid protocol %q", program.Proto))
		return false
	}
	var err error
	if program.warnRange, err = threshold.NewRange(program.Warning); err != nil {
		program.plugin.SetState(plugin.UNKNOWN, fmt.Sprintf("invalid warning range: %s", err))
		return false
	}
	if program.critRange, err = threshold.NewRange(program.Critical); err != nil {
		program.plugin.SetState(plugin.UNKNOWN, fmt.Sprintf("invalid critical range: %s", err))
		return false
	}
	if program.ZonesFile == "" && len(program.Zones) == 0 {
		program.plugin.SetState(plugin.UNKNOWN, "at least one of --zone or --zones-file is required")
		return false
	}
	zones, err := program.collectZones()
	if err != nil {
		program.plugin.SetState(plugin.UNKNOWN, err.Error())
		return false
	}
	if len(zones) == 0 {
		program.plugin.SetState(plugin.UNKNOWN, "no zones to check")
		return false
	}
	program.zones = zones
	program.fetcher = soa.NewFetcher(program.Proto, queryTimeout)
	log.Infof("checking %d zone(s) against %s and %s over %s",
		len(program.zones), program.servers[0], program.servers[1], program.Proto)
	return true
}

//-------------------------------------------------------------------------------------------------------

// Per-run tally of the zones whose serial difference fell outside the
// critical or warning range.
type checkOutcome struct {
	critZones []string
	warnZones []string
}

// `status` returns the overall plugin status, i.e. the worst per-zone
// classification.
func (outcome *checkOutcome) status() plugin.Status {
	status := plugin.OK
	if len(outcome.warnZones) > 0 {
		status = status.Worse(plugin.WARNING)
	}
	if len(outcome.critZones) > 0 {
		status = status.Worse(plugin.CRITICAL)
	}
	return status
}

// Absolute difference between two serial numbers.
func serialDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// Query every zone on both servers and classify the serial differences,
// critical range first. Any query failure aborts the run.
func (program *checkProgram) compareZones() (*checkOutcome, error) {
	outcome := &checkOutcome{}
	for _, zone := range program.zones {
		serials := make([]uint32, len(program.servers))
		for i, server := range program.servers {
			serial, rtt, err := program.fetcher.FetchSerial(server, zone)
			if err != nil {
				return nil, err
			}
			log.Debugf("zone %s: %s answered serial %d in %s", zone, server, serial, rtt)
			serials[i] = serial
		}
		diff := serialDiff(serials[0], serials[1])
		switch {
		case !program.critRange.CheckValue(float64(diff)):
			log.Infof("zone %s: serial diff %d outside critical range %s",
				zone, diff, program.critRange)
			outcome.critZones = append(outcome.critZones, zone)
		case !program.warnRange.CheckValue(float64(diff)):
			log.Infof("zone %s: serial diff %d outside warning range %s",
				zone, diff, program.warnRange)
			outcome.warnZones = append(outcome.warnZones, zone)
		default:
			log.Debugf("zone %s: serial diff %d ok", zone, diff)
		}
	}
	return outcome, nil
}

// Truncate a status message, marking the cut with an ellipsis.
func truncateMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) < maxMessageRunes {
		return msg
	}
	return string(runes[:maxMessageRunes]) + "…"
}

// Build the status message for an outcome: the non-OK count, up to five
// offending zone names (critical ones first), and the violated range when
// the check is not OK.
func (program *checkProgram) outcomeMessage(outcome *checkOutcome, status plugin.Status) string {
	count := len(outcome.critZones) + len(outcome.warnZones)
	msg := fmt.Sprintf("%s is %d", metricName, count)
	if count > 0 {
		zones := append(append([]string{}, outcome.critZones...), outcome.warnZones...)
		if len(zones) > maxZonesListed {
			zones = zones[:maxZonesListed]
		}
		msg += ": " + strings.Join(zones, ",")
	}
	msg = truncateMessage(msg)
	switch status {
	case plugin.CRITICAL:
		msg += fmt.Sprintf(" (outside range %s)", program.critRange.Bounds())
	case plugin.WARNING:
		msg += fmt.Sprintf(" (outside range %s)", program.warnRange.Bounds())
	}
	return msg
}

// Attach the zones_not_ok performance data with the configured ranges.
func (program *checkProgram) setPerfData(count int) {
	pd := perfdata.New(metricName, perfdata.UOM_NONE, strconv.Itoa(count))
	pd.SetWarn(program.warnRange)
	pd.SetCrit(program.critRange)
	program.plugin.AddPerfData(pd)
}

// Run the monitoring check: query all zones on both servers, classify the
// serial differences and report the outcome.
func (program *checkProgram) runCheck() {
	outcome, err := program.compareZones()
	if err != nil {
		program.plugin.SetState(plugin.UNKNOWN, err.Error())
		return
	}
	status := outcome.status()
	program.plugin.SetState(status, program.outcomeMessage(outcome, status))
	program.setPerfData(len(outcome.critZones) + len(outcome.warnZones))
}

func main() {
	program := newProgram(os.Args[1:])
	defer program.close()
	if program.checkFlags() {
		program.runCheck()
	}
}
