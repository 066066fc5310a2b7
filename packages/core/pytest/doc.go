// Package pytest abstracts the pytest executable behind a small host
// interface so the rest of ptw never deals with processes directly.
//
// It provides:
//   - The Host interface: run pytest with an argument list and observers
//   - Exit code constants matching pytest's exit code space
//   - Capability interfaces for reading the resolved config file path,
//     covering both newer (configfile) and older (inifile) pytest versions
//   - ExecHost, the production implementation that shells out to pytest
package pytest
