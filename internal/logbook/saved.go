package logbook

import "strings"

// SavedMeals is the persisted meal template collection.
type SavedMeals struct {
	*Collection[SavedMeal]
}

// FindByName returns the template whose name matches, ignoring surrounding
// whitespace.
func (s *SavedMeals) FindByName(name string) (SavedMeal, bool) {
	name = strings.TrimSpace(name)
	for _, item := range s.All() {
		if strings.TrimSpace(item.Name) == name {
			return item, true
		}
	}
	return SavedMeal{}, false
}

// IsSaved reports whether a template with name exists.
func (s *SavedMeals) IsSaved(name string) bool {
	_, ok := s.FindByName(name)
	return ok
}

// SavedExercises is the persisted exercise template collection.
type SavedExercises struct {
	*Collection[SavedExercise]
}

// FindByName returns the template whose name matches.
func (s *SavedExercises) FindByName(name string) (SavedExercise, bool) {
	name = strings.TrimSpace(name)
	for _, item := range s.All() {
		if strings.TrimSpace(item.Name) == name {
			return item, true
		}
	}
	return SavedExercise{}, false
}

// IsSaved reports whether a template with name exists.
func (s *SavedExercises) IsSaved(name string) bool {
	_, ok := s.FindByName(name)
	return ok
}
