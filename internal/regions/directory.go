package regions

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"aptrack/server/config"
	"aptrack/server/internal/models"
)

// Directory resolves human region names to 5-digit administrative codes and
// back. It prefers the government's tab-separated administrative code file
// (code, full name, status) when one is configured and falls back to the
// built-in hierarchy otherwise. All data is loaded once and read-only after.
type Directory struct {
	logger     *logrus.Logger
	fileLoaded bool

	// file-derived indexes, keyed by province and "province|district"
	fileDistricts map[string][]config.District
	fileDongs     map[string][]string
	fileCodes     map[string]string // "province|district" -> code

	codeToName map[string]string
}

const statusActive = "존재"

// NewDirectory builds a directory, parsing codeFile when it is non-empty and
// readable. A missing or malformed file is logged and ignored.
func NewDirectory(logger *logrus.Logger, codeFile string) *Directory {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	d := &Directory{
		logger:        logger,
		fileDistricts: make(map[string][]config.District),
		fileDongs:     make(map[string][]string),
		fileCodes:     make(map[string]string),
		codeToName:    make(map[string]string),
	}

	for province, districts := range config.RegionHierarchy {
		for district, code := range districts {
			d.codeToName[code] = fmt.Sprintf("%s %s", province, district)
		}
	}

	if codeFile != "" {
		if err := d.loadCodeFile(codeFile); err != nil {
			logger.WithError(err).WithField("file", codeFile).
				Warn("Could not load administrative code file, using built-in hierarchy")
		} else {
			d.fileLoaded = true
			logger.WithFields(logrus.Fields{
				"file":      codeFile,
				"districts": len(d.fileCodes),
			}).Info("Loaded administrative code file")
		}
	}

	return d
}

// loadCodeFile parses the flat administrative code listing. Each row is
// "code<TAB>full name<TAB>status"; only active rows count. The legal code is
// ten digits: sido(2) + sgg(3) + emd(3) + ri(2).
func (d *Directory) loadCodeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Parents that subdivide further ("수원시" -> "수원시 장안구"); the bare
	// parent entry is dropped so district lists stay unambiguous.
	hasChildren := make(map[string]bool)
	type districtRow struct {
		province string
		name     string
		code     string
		tokens   int
	}
	var districtRows []districtRow
	dongSets := make(map[string]map[string]bool)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 3 {
			continue
		}
		code := strings.TrimSpace(fields[0])
		name := strings.TrimSpace(fields[1])
		status := strings.TrimSpace(fields[2])
		if status != statusActive || len(code) != 10 {
			continue
		}

		tokens := strings.Fields(name)
		if len(tokens) < 2 {
			continue // province-level row
		}
		province := tokens[0]

		switch {
		case code[5:] == "00000":
			// district-level row (sgg set, emd/ri zero)
			districtName := strings.Join(tokens[1:], " ")
			if len(tokens) == 3 {
				hasChildren[tokens[1]+"|"+province] = true
			}
			districtRows = append(districtRows, districtRow{
				province: province,
				name:     districtName,
				code:     code[:5],
				tokens:   len(tokens),
			})
		case code[8:] == "00":
			// dong-level row; rural "ri" subdivisions carry a non-zero
			// trailing pair and are excluded entirely
			dongName := tokens[len(tokens)-1]
			districtName := strings.Join(tokens[1:len(tokens)-1], " ")
			key := province + "|" + districtName
			if dongSets[key] == nil {
				dongSets[key] = make(map[string]bool)
			}
			dongSets[key][dongName] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	for _, row := range districtRows {
		if row.tokens == 2 && hasChildren[row.name+"|"+row.province] {
			continue
		}
		d.fileDistricts[row.province] = append(d.fileDistricts[row.province], config.District{
			Name: row.name,
			Code: row.code,
		})
		d.fileCodes[row.province+"|"+row.name] = row.code
		d.codeToName[row.code] = row.province + " " + row.name
	}
	for province := range d.fileDistricts {
		sort.Slice(d.fileDistricts[province], func(i, j int) bool {
			return d.fileDistricts[province][i].Name < d.fileDistricts[province][j].Name
		})
	}

	for key, set := range dongSets {
		dongs := make([]string, 0, len(set))
		for dong := range set {
			dongs = append(dongs, dong)
		}
		sort.Strings(dongs)
		d.fileDongs[key] = dongs
	}

	return nil
}

// Resolve returns the 5-digit code for a province/district pair, or "" when
// the pair is unknown.
func (d *Directory) Resolve(province, district string) string {
	if d.fileLoaded {
		if code, ok := d.fileCodes[province+"|"+district]; ok {
			return code
		}
	}
	return config.GetRegionCode(province, district)
}

// Provinces returns the supported provinces.
func (d *Directory) Provinces() []string {
	if d.fileLoaded {
		provinces := make([]string, 0, len(d.fileDistricts))
		for province := range d.fileDistricts {
			provinces = append(provinces, province)
		}
		sort.Strings(provinces)
		return provinces
	}
	return config.GetProvinces()
}

// Districts lists the districts of a province.
func (d *Directory) Districts(province string) []config.District {
	if d.fileLoaded {
		if districts, ok := d.fileDistricts[province]; ok {
			return districts
		}
	}
	return config.GetDistricts(province)
}

// Dongs lists the legal sub-districts of a district. Only available from the
// code file; the built-in hierarchy does not go below district level.
func (d *Directory) Dongs(province, district string) []string {
	if !d.fileLoaded {
		return nil
	}
	return d.fileDongs[province+"|"+district]
}

// CodeToName returns the display name for a region code. Unknown codes get a
// placeholder so downstream joins never fail on a missing name.
func (d *Directory) CodeToName(code string) string {
	if name, ok := d.codeToName[code]; ok {
		return name
	}
	return fmt.Sprintf("지역코드 %s", code)
}

// Tree returns the full hierarchy as uniform region nodes. A node without
// children has no further subdivision.
func (d *Directory) Tree() []models.Region {
	provinces := d.Provinces()
	tree := make([]models.Region, 0, len(provinces))
	for _, province := range provinces {
		node := models.Region{Name: province}
		for _, district := range d.Districts(province) {
			child := models.Region{Code: district.Code, Name: district.Name}
			for _, dong := range d.Dongs(province, district.Name) {
				child.Children = append(child.Children, models.Region{Name: dong})
			}
			node.Children = append(node.Children, child)
		}
		tree = append(tree, node)
	}
	return tree
}
