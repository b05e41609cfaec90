package config

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"gopkg.in/yaml.v2"
)

// ResiliencyFailures loads the failure cases of one scenario and iterates over them
type ResiliencyFailures struct {
	ScenarioName  types.ScenarioName
	FailureMethod types.FailureMethod
	definition    types.ScenarioDefinition
}

type scenarioBody struct {
	Workload string          `yaml:"WORKLOAD"`
	Failures []yaml.MapSlice `yaml:"FAILURES"`
}

// NewResiliencyFailures loads <dir>/<lower-cased scenario>.yaml and, when failureMethod is set,
// keeps only the cases of that method. An empty filter result is logged, not an error.
func NewResiliencyFailures(dir string, scenario types.ScenarioName, failureMethod string) (*ResiliencyFailures, error) {
	rf := &ResiliencyFailures{ScenarioName: types.NormalizeScenarioName(string(scenario))}

	if failureMethod != "" {
		rf.FailureMethod = types.ParseFailureMethod(failureMethod)
		if rf.FailureMethod == types.FailureMethodUnknown {
			return nil, cerrors.Error{
				ErrorCode: cerrors.ErrorTypeUnsupportedFailureMethod,
				Reason:    "unknown failure method filter",
				Target:    fmt.Sprintf("{scenario: %s, failureMethod: %s}", rf.ScenarioName, failureMethod),
			}
		}
	}

	definition, err := LoadScenario(dir, rf.ScenarioName)
	if err != nil {
		return nil, err
	}

	if rf.FailureMethod != types.FailureMethodUnknown {
		definition.Failures = definition.Failures.Filter(rf.FailureMethod)
		if definition.Failures.Len() == 0 {
			log.Warnf("No failures found for failure method '%v' in scenario '%v'", rf.FailureMethod, rf.ScenarioName)
		}
	}
	rf.definition = definition
	return rf, nil
}

// Workload returns the workload name associated with the scenario, if any
func (rf *ResiliencyFailures) Workload() string {
	return rf.definition.Workload
}

// Failures returns the loaded, possibly filtered, failure cases
func (rf *ResiliencyFailures) Failures() types.FailureCaseList {
	return rf.definition.Failures
}

// All iterates over the failure cases from the head of the list
func (rf *ResiliencyFailures) All() iter.Seq2[int, types.FailureCase] {
	return rf.definition.Failures.All()
}

// LoadScenario reads the scenario definition of the given name from dir
func LoadScenario(dir string, scenario types.ScenarioName) (types.ScenarioDefinition, error) {
	scenarioFile := strings.ToLower(string(scenario)) + ".yaml"
	path := filepath.Join(dir, scenarioFile)
	target := fmt.Sprintf("{scenario: %s, file: %s}", scenario, path)

	log.Infof("Searching for scenario '%v' in directory: %v", scenario, dir)
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ScenarioDefinition{}, cerrors.Error{
			ErrorCode: cerrors.ErrorTypeScenarioNotFound,
			Reason:    fmt.Sprintf("scenario file '%s' not found: %v", scenarioFile, err),
			Target:    target,
		}
	}

	var document yaml.MapSlice
	if err := yaml.Unmarshal(data, &document); err != nil {
		return types.ScenarioDefinition{}, notFound(target, fmt.Sprintf("could not parse scenario file: %v", err))
	}

	for _, item := range document {
		key, ok := item.Key.(string)
		if !ok || !strings.EqualFold(key, string(scenario)) {
			continue
		}
		log.Infof("Found scenario '%v' in file: %v", scenario, scenarioFile)
		return parseScenario(scenario, item.Value, target)
	}
	return types.ScenarioDefinition{}, notFound(target, fmt.Sprintf("scenario '%s' not found in file", scenario))
}

func parseScenario(scenario types.ScenarioName, value interface{}, target string) (types.ScenarioDefinition, error) {
	var body scenarioBody
	if err := remarshal(value, &body); err != nil {
		return types.ScenarioDefinition{}, notFound(target, fmt.Sprintf("malformed scenario body: %v", err))
	}

	definition := types.ScenarioDefinition{
		Name:     scenario,
		Workload: body.Workload,
		Failures: types.FailureCaseList{},
	}
	for index, entry := range body.Failures {
		failureCase, err := ParseFailureCase(entry)
		if err != nil {
			return types.ScenarioDefinition{}, stacktrace.Propagate(err, "invalid failure case #%d of scenario %s", index, scenario)
		}
		definition.Failures = append(definition.Failures, failureCase)
	}
	return definition, nil
}

// ParseFailureCase converts one single-key FAILURES entry into a typed failure case.
// Unknown method identifiers are rejected here so that they never reach dispatch.
func ParseFailureCase(entry yaml.MapSlice) (types.FailureCase, error) {
	if len(entry) != 1 {
		return types.FailureCase{}, notFound(fmt.Sprintf("%v", entry),
			fmt.Sprintf("a failure case must hold exactly one failure method, found %d", len(entry)))
	}

	identifier := fmt.Sprint(entry[0].Key)
	method := types.ParseFailureMethod(identifier)
	if method == types.FailureMethodUnknown {
		return types.FailureCase{}, cerrors.Error{
			ErrorCode: cerrors.ErrorTypeUnsupportedFailureMethod,
			Reason:    fmt.Sprintf("unknown failure method '%s'", identifier),
			Target:    fmt.Sprintf("{failureMethod: %s}", identifier),
		}
	}

	failureCase := types.FailureCase{Method: method, Raw: map[string]interface{}{}}
	if entry[0].Value == nil {
		return failureCase, nil
	}

	raw, ok := entry[0].Value.(map[interface{}]interface{})
	if !ok {
		if slice, isSlice := entry[0].Value.(yaml.MapSlice); isSlice {
			raw = map[interface{}]interface{}{}
			for _, item := range slice {
				raw[item.Key] = item.Value
			}
		} else {
			return types.FailureCase{}, notFound(identifier, fmt.Sprintf("parameters of '%s' must be a mapping", identifier))
		}
	}
	for key, value := range raw {
		failureCase.Raw[fmt.Sprint(key)] = value
	}
	if err := remarshal(raw, &failureCase.Parameters); err != nil {
		return types.FailureCase{}, notFound(identifier, fmt.Sprintf("invalid parameters of '%s': %v", identifier, err))
	}
	return failureCase, nil
}

func remarshal(in interface{}, out interface{}) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func notFound(target, reason string) cerrors.Error {
	return cerrors.Error{
		ErrorCode: cerrors.ErrorTypeScenarioNotFound,
		Reason:    reason,
		Target:    target,
	}
}
